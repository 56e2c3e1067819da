package controller

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/covlink/internal/model"
)

var (
	browserTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("6")).
				Bold(true).
				Padding(0, 1)

	detailHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("14")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type segmentItem struct {
	summary m.SegmentSummary
}

func (i segmentItem) FilterValue() string {
	return i.summary.Entry.Identifier
}

// Single-line delegate for segment list items.
type segmentDelegate struct{}

func (d segmentDelegate) Height() int  { return 1 }
func (d segmentDelegate) Spacing() int { return 0 }
func (d segmentDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d segmentDelegate) Render(w io.Writer, l list.Model, index int, item list.Item) {
	seg, ok := item.(segmentItem)
	if !ok {
		return
	}

	isSelected := index == l.Index()

	count := "missing"
	if !seg.summary.Missing {
		count = fmt.Sprintf("%d", len(seg.summary.Dump.Functions))
	}

	var keyStyle, idStyle, countStyle lipgloss.Style

	if isSelected {
		selected := lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)
		keyStyle = selected.Width(12)
		idStyle = selected
		countStyle = selected.Width(8).Align(lipgloss.Right)
	} else {
		keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Width(12)
		idStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Width(8).
			Align(lipgloss.Right)
	}

	width := l.Width() - 22 // key column (12) + count column (8) + spacing
	identifier := truncateToWidth(seg.summary.Entry.Identifier, width)

	line := fmt.Sprintf("%s %s  %s",
		keyStyle.Render(seg.summary.Entry.Key),
		countStyle.Render(count),
		idStyle.Render(identifier),
	)
	_, _ = fmt.Fprint(w, line)
}

// segmentBrowser is the Bubble Tea model behind the view command: a segment
// list with a drill-down function view.
type segmentBrowser struct {
	list      list.Model
	viewport  viewport.Model
	summaries []m.SegmentSummary
	detail    bool
	selected  int
	width     int
	height    int
}

func newSegmentBrowser(summaries []m.SegmentSummary) segmentBrowser {
	items := make([]list.Item, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, segmentItem{summary: summary})
	}

	l := list.New(items, segmentDelegate{}, 0, 0)
	l.Title = "Coverage segments"
	l.SetShowStatusBar(false)
	l.Styles.Title = browserTitleStyle

	return segmentBrowser{
		list:      l,
		viewport:  viewport.New(0, 0),
		summaries: summaries,
	}
}

func (b segmentBrowser) Init() tea.Cmd {
	return nil
}

func (b segmentBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.list.SetSize(msg.Width, msg.Height)
		b.viewport.Width = msg.Width
		b.viewport.Height = msg.Height - 3 // header + help line

		return b, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if b.detail {
				b.detail = false
				return b, nil
			}

			return b, tea.Quit
		case "esc":
			if b.detail {
				b.detail = false
				return b, nil
			}
		case "enter":
			if !b.detail && len(b.summaries) > 0 {
				b.selected = b.list.Index()
				b.viewport.SetContent(renderSegmentDetail(b.summaries[b.selected], b.width))
				b.viewport.GotoTop()
				b.detail = true

				return b, nil
			}
		}
	}

	var cmd tea.Cmd

	if b.detail {
		b.viewport, cmd = b.viewport.Update(msg)
	} else {
		b.list, cmd = b.list.Update(msg)
	}

	return b, cmd
}

func (b segmentBrowser) View() string {
	if !b.detail {
		return b.list.View()
	}

	summary := b.summaries[b.selected]
	header := detailHeaderStyle.Render(
		fmt.Sprintf("%s  %s", summary.Entry.Key, summary.Entry.Identifier),
	)
	help := helpStyle.Render("esc back • q quit")

	return header + "\n" + b.viewport.View() + "\n" + help
}

func renderSegmentDetail(summary m.SegmentSummary, width int) string {
	if summary.Missing {
		return "dump file missing (flush reported a write failure)"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\t%s\n\n", summary.Dump.ImageName, summary.Dump.ImagePath)

	for _, fn := range summary.Dump.Functions {
		src := string(fn.SourceFile)
		if src == "" {
			src = "??"
		}

		line := fmt.Sprintf("+0x%-10x %s  %s:%d", uint64(fn.Offset), fn.Symbol, src, fn.SourceLine)
		sb.WriteString(truncateToWidth(line, width))
		sb.WriteString("\n")
	}

	return sb.String()
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	const ellipsis = "…"

	if width <= 1 {
		return ellipsis
	}

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}

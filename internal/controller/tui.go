package controller

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/covlink/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplaySegments runs the interactive segment browser: a list of flushed
// segments, with a per-segment detail view of the covered functions.
func (t *TUI) DisplaySegments(summaries []m.SegmentSummary) error {
	program := tea.NewProgram(newSegmentBrowser(summaries), tea.WithOutput(t.output))

	_, err := program.Run()

	return err
}

package controller

import (
	"bytes"
	"fmt"

	m "github.com/mouse-blink/covlink/internal/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplaySegments prints one table row per flushed segment, in lookup-file
// order. A segment whose numbered dump file is missing (a reported per-flush
// write failure) is shown as such instead of a count.
func (s *SimpleUI) DisplaySegments(summaries []m.SegmentSummary) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Segment", "Identifier", "Functions"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	totalFunctions := 0

	for _, summary := range summaries {
		count := "missing"
		if !summary.Missing {
			count = fmt.Sprintf("%d", len(summary.Dump.Functions))
			totalFunctions += len(summary.Dump.Functions)
		}

		table.Append([]string{summary.Entry.Key, summary.Entry.Identifier, count})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Segments %d", len(summaries)),
		"",
		fmt.Sprintf("%d", totalFunctions),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

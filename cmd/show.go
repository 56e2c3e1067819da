package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/covlink/internal/adapter"
	"github.com/mouse-blink/covlink/internal/controller"
	m "github.com/mouse-blink/covlink/internal/model"
)

// showCmd represents the show command.
var showCmd = newShowCmd()

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [logdir]",
		Short: "Summarize recorded coverage segments",
		Long: `Show lists every segment recorded in a log directory: its sequence key,
the identifier it was flushed under and the number of covered functions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := loadSummaries(args)
			if err != nil {
				return err
			}

			return controller.NewSimpleUI(cmd).DisplaySegments(summaries)
		},
	}

	return cmd
}

func loadSummaries(args []string) ([]m.SegmentSummary, error) {
	dir := m.Path("trace_logs")
	if len(args) == 1 {
		dir = m.Path(args[0])
	}

	entries, err := adapter.LoadLookup(dir)
	if err != nil {
		return nil, err
	}

	return adapter.LoadSegments(dir, entries)
}

func init() {
	rootCmd.AddCommand(showCmd)
}

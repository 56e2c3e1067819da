package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/covlink/internal/controller"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [logdir]",
		Short: "Browse recorded coverage segments interactively",
		Long: `View opens an interactive browser over the segments recorded in a log
directory. Selecting a segment shows the functions it covers. Falls back
to the plain table when stdout is not a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := loadSummaries(args)
			if err != nil {
				return err
			}

			ui := controller.NewUI(cmd, controller.IsTTY(os.Stdout))

			return ui.DisplaySegments(summaries)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

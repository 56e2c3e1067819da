package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/covlink/internal/domain"
	m "github.com/mouse-blink/covlink/internal/model"
)

// excludesFileEnvVar names the fallback environment variable test harnesses
// set instead of passing --excludes.
const excludesFileEnvVar = "COVLINK_EXCLUDES_FILE"

var filterExcludesFlag string
var filterPreviousFlag string

// filterCmd represents the filter command.
var filterCmd = newFilterCmd()

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Build a test-selection filter from recorded exclusions",
		Long: `Filter reads a recorded exclusion file (one previously-recorded test per
line) and merges its identifiers into an existing test-framework filter
expression. The result is printed to stdout for the test framework's own
--filter style option. A missing exclusion file yields the previous filter
unchanged.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filterExcludesFlag
			if path == "" {
				path = os.Getenv(excludesFileEnvVar)
			}

			if path == "" {
				return fmt.Errorf("no excludes file: pass --excludes or set %s", excludesFileEnvVar)
			}

			filter, err := domain.BuildFilter(m.Path(path), filterPreviousFlag)
			if err != nil {
				return err
			}

			cmd.Println(filter)

			return nil
		},
	}

	cmd.Flags().StringVarP(&filterExcludesFlag, "excludes", "e", "", "exclusion file recorded by a previous run ($"+excludesFileEnvVar+")")
	cmd.Flags().StringVarP(&filterPreviousFlag, "previous", "p", "", "existing filter expression to extend")

	return cmd
}

func init() {
	rootCmd.AddCommand(filterCmd)
}

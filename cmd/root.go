// Package cmd provides the root command and CLI setup for covlink.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "covlink",
		Short: "Function-level coverage correlation for test-impact analysis",
		Long: `Covlink correlates executed functions with the test cases that executed
them. Attached to a binary-instrumentation engine, it slices the stream of
function-entry events into one coverage segment per test boundary and
persists each segment next to a lookup table mapping segment numbers to
test identifiers. Downstream tooling uses the recorded correlation to
select which tests to re-run after a code change.`,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

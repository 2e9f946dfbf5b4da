// Command scenario-runner drives fixture-backed black-box scenarios from
// the command line: for every fixture under the configured root it stages
// the initial state into an isolated working directory, executes the
// configured command there, and checks the directory against the expected
// final state.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcxwhiz/unittest-scenarios/pkg/plog"
)

// version holds the application's version string. It's a `var` so it can be
// set at compile time using ldflags.
// Example: go build -ldflags="-X main.version=1.0.0"
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "scenario-runner",
		Short:         "Run filesystem-state test scenarios against a command",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var quiet bool
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		plog.SetQuiet(quiet)
	}

	rootCmd.AddCommand(newRunCmd(), newListCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the scenario-runner version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scenario-runner %s\n", version)
		},
	}
}

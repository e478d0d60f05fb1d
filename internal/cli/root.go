// Package cli implements the managed computation engine's command-line
// interface using Cobra, grounded on the teacher's internal/cli root/serve
// shape (a single persistent-service daemon plus a handful of catalog
// inspection subcommands).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mce",
	Short: "mce — a managed computation engine",
	Long: `mce stores calc object artifacts (code + expression pairs) and evaluates
them on demand, memoized across an implicit dependency graph.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

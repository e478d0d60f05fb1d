package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/artifactengine/mce/internal/debugsandbox"
)

func init() {
	rootCmd.AddCommand(debugWorkerCmd)
}

// debugWorkerCmd is the hidden child-process entry point the debug sandbox
// (C9) re-execs this binary under. It is never invoked directly by a user.
var debugWorkerCmd = &cobra.Command{
	Use:    debugsandbox.WorkerSubcommand,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Exit(debugsandbox.RunWorker(configPath, os.Stdin, os.Stdout, os.Stderr))
		return nil
	},
}

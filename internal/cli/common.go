package cli

import (
	"os"

	"github.com/artifactengine/mce/internal/engine"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "boot.ini", "Path to the engine's INI boot file")
}

// openEngine opens the engine described by the --config flag, using this
// same binary as the debug sandbox's child executable.
func openEngine() (*engine.Engine, error) {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	return engine.New(configPath, self)
}

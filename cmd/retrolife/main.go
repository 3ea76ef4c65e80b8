package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "retrolife",
		Short: "retrolife",
		Long:  `A SAT-based solver that finds predecessor configurations of Conway's Game of Life.`,

		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSolveCmd(),
		newValidateCmd(),
		newAnalyzeCmd(),
		newSetupCmd(),
		newWatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger maps the configured verbosity (and the --verbose
// shortcut) onto logrus levels.
func newLogger(verbosity int, verbose bool) *log.Logger {
	logger := log.New()
	switch {
	case verbose || verbosity >= 2:
		logger.SetLevel(log.DebugLevel)
	case verbosity == 1:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

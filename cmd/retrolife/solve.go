package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/retrolife/retrolife/pkg/config"
	"github.com/retrolife/retrolife/pkg/lib/signals"
	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/output"
	"github.com/retrolife/retrolife/pkg/solver"
)

// loadSettings reads the config file when one is given, otherwise
// starts from defaults, then layers the command-line overrides.
func loadSettings(configPath string, overrides config.Overrides) (*config.Settings, error) {
	var settings *config.Settings
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		settings = loaded
	} else {
		settings = config.Default()
	}
	settings.Apply(overrides)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func newSolveCmd() *cobra.Command {
	var (
		configPath    string
		overrides     config.Overrides
		showEvolution bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find predecessors of a target state",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(configPath, overrides)
			if err != nil {
				return err
			}
			logger := newLogger(settings.Solver.Verbosity, verbose)
			if settings.Solver.EnablePreprocessing {
				logger.Debug("preprocessing requested; the bundled backends preprocess internally")
			}

			target, err := life.LoadFile(settings.Input.TargetStateFile)
			if err != nil {
				return err
			}
			opts, err := settings.SolverOptions()
			if err != nil {
				return err
			}

			problem, err := solver.NewReverseProblem(target, opts, logger)
			if err != nil {
				return err
			}
			result, err := problem.Solve(signals.Context())
			if err != nil {
				return err
			}

			rendered, err := output.Render(
				output.Format(settings.Output.Format), result, target, problem.Options(), showEvolution)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)

			if err := output.Save(
				settings.Output.OutputDirectory, result, problem.Options(),
				settings.Output.SaveIntermediate); err != nil {
				return err
			}

			if result.Cause == solver.CauseInternalInconsistency {
				return errors.New("a SAT model failed validation; this is a solver bug")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file path")
	cmd.Flags().StringVarP(&overrides.TargetFile, "target", "t", "", "target state file (overrides config)")
	cmd.Flags().IntVarP(&overrides.Generations, "generations", "g", 0, "number of generations (overrides config)")
	cmd.Flags().IntVarP(&overrides.MaxSolutions, "max-solutions", "m", 0, "maximum solutions to find (overrides config)")
	cmd.Flags().StringVarP(&overrides.OutputDir, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().BoolVar(&showEvolution, "show-evolution", false, "show the full evolution of each solution")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}

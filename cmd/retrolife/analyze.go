package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retrolife/retrolife/pkg/config"
	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/solver"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		configPath  string
		targetPath  string
		generations int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Estimate the difficulty of reversing a target state",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(configPath, config.Overrides{
				TargetFile:  targetPath,
				Generations: generations,
			})
			if err != nil {
				return err
			}

			target, err := life.LoadFile(settings.Input.TargetStateFile)
			if err != nil {
				return err
			}

			analysis := solver.Analyze(target, settings.Simulation.Generations)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Target: %dx%d, %d generation(s) back\n",
				analysis.Width, analysis.Height, analysis.Generations)
			fmt.Fprintf(out, "Living cell density: %.1f%%\n", analysis.Density*100)
			if analysis.KnownPattern != "" {
				fmt.Fprintf(out, "Recognised pattern: %s\n", analysis.KnownPattern)
			}
			fmt.Fprintf(out, "Estimated formula: ~%d variables, ~%d clauses\n",
				analysis.EstimatedVariables, analysis.EstimatedClauses)
			fmt.Fprintf(out, "Complexity: %s\n", analysis.Complexity)
			fmt.Fprintf(out, "Solvability likelihood: %s\n", analysis.Likelihood)
			fmt.Fprintln(out, "Recommendations:")
			for _, recommendation := range analysis.Recommendations {
				fmt.Fprintf(out, "  - %s\n", recommendation)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file path")
	cmd.Flags().StringVarP(&targetPath, "target", "t", "", "target state file (overrides config)")
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "number of generations (overrides config)")

	return cmd
}

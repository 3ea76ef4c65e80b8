package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/retrolife/retrolife/pkg/config"
	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/output"
	"github.com/retrolife/retrolife/pkg/solver"
)

func newValidateCmd() *cobra.Command {
	var (
		configPath      string
		predecessorPath string
		targetPath      string
		generations     int
		showEvolution   bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a predecessor evolves to a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(configPath, config.Overrides{Generations: generations})
			if err != nil {
				return err
			}

			predecessor, err := life.LoadFile(predecessorPath)
			if err != nil {
				return err
			}
			target, err := life.LoadFile(targetPath)
			if err != nil {
				return err
			}
			boundary, err := life.ParseBoundary(settings.Simulation.BoundaryCondition)
			if err != nil {
				return err
			}

			validator := solver.NewValidator(settings.Simulation.Generations, boundary)
			validation, err := validator.Validate(predecessor, target)
			if err != nil {
				return err
			}

			if showEvolution {
				for g, state := range validation.Evolution {
					fmt.Fprintf(cmd.OutOrStdout(), "generation %d:\n%s\n", g, output.GridString(state, false))
				}
			}

			if !validation.Valid {
				return errors.Errorf(
					"predecessor does not evolve to the target: first divergence at (%d,%d) after %d generation(s)",
					validation.DivergentX, validation.DivergentY, validation.Generation)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "predecessor evolves to the target in %d generation(s)\n",
				settings.Simulation.Generations)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file path")
	cmd.Flags().StringVarP(&predecessorPath, "predecessor", "p", "", "predecessor state file")
	cmd.Flags().StringVarP(&targetPath, "target", "t", "", "target state file")
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "number of generations (overrides config)")
	cmd.Flags().BoolVar(&showEvolution, "show-evolution", false, "show the evolution path")
	for _, required := range []string{"predecessor", "target"} {
		if err := cmd.MarkFlagRequired(required); err != nil {
			panic(err)
		}
	}

	return cmd
}

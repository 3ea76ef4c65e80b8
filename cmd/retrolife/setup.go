package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/retrolife/retrolife/pkg/config"
	"github.com/retrolife/retrolife/pkg/life"
)

func newSetupCmd() *cobra.Command {
	var (
		directory string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create an example configuration and target-state files",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := filepath.Join(directory, "config", "default.yaml")
			if !force {
				if _, err := os.Stat(configPath); err == nil {
					return errors.Errorf("%s already exists, use --force to overwrite", configPath)
				}
			}

			patternDir := filepath.Join(directory, "input", "target_states")
			if err := life.WriteExamples(patternDir); err != nil {
				return err
			}

			settings := config.Default()
			settings.Input.TargetStateFile = filepath.Join(patternDir, "blinker.txt")
			settings.Output.OutputDirectory = filepath.Join(directory, "output", "solutions")
			if err := settings.Save(configPath); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %s\n", configPath)
			for _, name := range life.PatternNames() {
				fmt.Fprintf(out, "wrote %s\n", filepath.Join(patternDir, name+".txt"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "directory to create files in")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")

	return cmd
}

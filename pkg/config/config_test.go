package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/solver"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
simulation:
  generations: 3
  boundary_condition: wrap
solver:
  backend: parallel
  max_solutions: 5
  timeout_seconds: 60
  num_threads: 4
  verbosity: 2
input:
  target_state_file: target.txt
output:
  format: json
  save_intermediate: true
  output_directory: out
encoding:
  symmetry_breaking: true
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, settings.Simulation.Generations)
	assert.Equal(t, "wrap", settings.Simulation.BoundaryCondition)
	assert.Equal(t, "parallel", settings.Solver.Backend)
	assert.Equal(t, ThreadCount(4), settings.Solver.NumThreads)
	assert.Equal(t, 2, settings.Solver.Verbosity)
	assert.True(t, settings.Output.SaveIntermediate)
	assert.True(t, settings.Encoding.SymmetryBreaking)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
simulation:
  generations: 2
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, settings.Simulation.Generations)
	assert.Equal(t, "dead", settings.Simulation.BoundaryCondition)
	assert.Equal(t, "single_threaded", settings.Solver.Backend)
	assert.Equal(t, 300, settings.Solver.TimeoutSeconds)
}

func TestThreadCountAuto(t *testing.T) {
	path := writeConfig(t, `
solver:
  num_threads: auto
`)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ThreadCount(0), settings.Solver.NumThreads)
}

func TestValidate(t *testing.T) {
	type tc struct {
		Name   string
		Mutate func(*Settings)
	}

	for _, tt := range []tc{
		{Name: "zero generations", Mutate: func(s *Settings) { s.Simulation.Generations = 0 }},
		{Name: "bad boundary", Mutate: func(s *Settings) { s.Simulation.BoundaryCondition = "open" }},
		{Name: "bad backend", Mutate: func(s *Settings) { s.Solver.Backend = "cadical" }},
		{Name: "zero max solutions", Mutate: func(s *Settings) { s.Solver.MaxSolutions = 0 }},
		{Name: "zero timeout", Mutate: func(s *Settings) { s.Solver.TimeoutSeconds = 0 }},
		{Name: "verbosity out of range", Mutate: func(s *Settings) { s.Solver.Verbosity = 3 }},
		{Name: "unknown format", Mutate: func(s *Settings) { s.Output.Format = "xml" }},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			settings := Default()
			tt.Mutate(settings)

			err := settings.Validate()
			require.Error(t, err)

			var cerr *ConfigError
			assert.ErrorAs(t, err, &cerr)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
simulation:
  generatons: 3
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	settings := Default()
	settings.Apply(Overrides{
		TargetFile:   "other.txt",
		Generations:  7,
		MaxSolutions: 2,
		OutputDir:    "elsewhere",
	})

	assert.Equal(t, "other.txt", settings.Input.TargetStateFile)
	assert.Equal(t, 7, settings.Simulation.Generations)
	assert.Equal(t, 2, settings.Solver.MaxSolutions)
	assert.Equal(t, "elsewhere", settings.Output.OutputDirectory)

	settings.Apply(Overrides{})
	assert.Equal(t, "other.txt", settings.Input.TargetStateFile)
}

func TestSolverOptions(t *testing.T) {
	settings := Default()
	settings.Simulation.Generations = 4
	settings.Simulation.BoundaryCondition = "mirror"
	settings.Solver.Backend = "parallel"
	settings.Solver.NumThreads = 8
	settings.Solver.TimeoutSeconds = 42
	settings.Encoding.SymmetryBreaking = true

	opts, err := settings.SolverOptions()
	require.NoError(t, err)

	assert.Equal(t, 4, opts.Generations)
	assert.Equal(t, life.Mirror, opts.Boundary)
	assert.Equal(t, solver.BackendParallel, opts.Backend)
	assert.Equal(t, 8, opts.Threads)
	assert.Equal(t, 42*time.Second, opts.Timeout)
	assert.True(t, opts.SymmetryBreaking)
}

func TestSaveRoundTrip(t *testing.T) {
	settings := Default()
	settings.Solver.NumThreads = 0

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, settings.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "num_threads: auto")
}

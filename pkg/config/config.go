package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/solver"
)

// ConfigError reports an invalid settings document.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// ThreadCount is a worker count that may be given as "auto" in
// YAML. Zero means auto.
type ThreadCount int

func (t *ThreadCount) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		if n < 1 {
			return &ConfigError{Reason: fmt.Sprintf("num_threads must be at least 1, got %d", n)}
		}
		*t = ThreadCount(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s != "auto" {
		return &ConfigError{Reason: fmt.Sprintf("num_threads must be a positive integer or \"auto\", got %q", s)}
	}
	*t = 0
	return nil
}

func (t ThreadCount) MarshalYAML() (interface{}, error) {
	if t == 0 {
		return "auto", nil
	}
	return int(t), nil
}

// Settings is the on-disk configuration document.
type Settings struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Solver     SolverConfig     `yaml:"solver"`
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Encoding   EncodingConfig   `yaml:"encoding"`
}

type SimulationConfig struct {
	Generations       int    `yaml:"generations"`
	BoundaryCondition string `yaml:"boundary_condition"`
}

type SolverConfig struct {
	Backend        string      `yaml:"backend"`
	MaxSolutions   int         `yaml:"max_solutions"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
	NumThreads     ThreadCount `yaml:"num_threads"`
	// EnablePreprocessing is advisory; the bundled backends have no
	// preprocessing switch and only log the setting.
	EnablePreprocessing bool `yaml:"enable_preprocessing"`
	Verbosity           int  `yaml:"verbosity"`
}

type InputConfig struct {
	TargetStateFile string `yaml:"target_state_file"`
}

type OutputConfig struct {
	Format           string `yaml:"format"`
	SaveIntermediate bool   `yaml:"save_intermediate"`
	OutputDirectory  string `yaml:"output_directory"`
}

type EncodingConfig struct {
	SymmetryBreaking bool `yaml:"symmetry_breaking"`
}

// Default returns the settings used when no file is given.
func Default() *Settings {
	return &Settings{
		Simulation: SimulationConfig{
			Generations:       1,
			BoundaryCondition: "dead",
		},
		Solver: SolverConfig{
			Backend:        "single_threaded",
			MaxSolutions:   10,
			TimeoutSeconds: 300,
			NumThreads:     0,
			Verbosity:      1,
		},
		Input: InputConfig{
			TargetStateFile: filepath.Join("input", "target_states", "example.txt"),
		},
		Output: OutputConfig{
			Format:          "text",
			OutputDirectory: filepath.Join("output", "solutions"),
		},
		Encoding: EncodingConfig{},
	}
}

// Load reads and validates settings from a YAML file.
func Load(path string) (*Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	settings := Default()
	if err := yaml.UnmarshalStrict(content, settings); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes the settings to a YAML file, creating parent
// directories as needed.
func (s *Settings) Save(path string) error {
	content, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to serialise settings")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(path, content, 0o644), "failed to write config file %s", path)
}

// Validate checks every range constraint the solver depends on.
func (s *Settings) Validate() error {
	if s.Simulation.Generations < 1 {
		return &ConfigError{Reason: fmt.Sprintf("simulation.generations must be at least 1, got %d", s.Simulation.Generations)}
	}
	if _, err := life.ParseBoundary(s.Simulation.BoundaryCondition); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	if _, err := solver.ParseBackendKind(s.Solver.Backend); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	if s.Solver.MaxSolutions < 1 {
		return &ConfigError{Reason: fmt.Sprintf("solver.max_solutions must be at least 1, got %d", s.Solver.MaxSolutions)}
	}
	if s.Solver.TimeoutSeconds < 1 {
		return &ConfigError{Reason: fmt.Sprintf("solver.timeout_seconds must be at least 1, got %d", s.Solver.TimeoutSeconds)}
	}
	if s.Solver.Verbosity < 0 || s.Solver.Verbosity > 2 {
		return &ConfigError{Reason: fmt.Sprintf("solver.verbosity must be 0, 1, or 2, got %d", s.Solver.Verbosity)}
	}
	switch s.Output.Format {
	case "", "text", "json", "yaml", "visual":
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown output format %q", s.Output.Format)}
	}
	return nil
}

// Overrides carries command-line values that take precedence over
// the file. Zero values leave the file's setting untouched.
type Overrides struct {
	TargetFile   string
	Generations  int
	MaxSolutions int
	OutputDir    string
}

// Apply merges command-line overrides into the settings.
func (s *Settings) Apply(o Overrides) {
	if o.TargetFile != "" {
		s.Input.TargetStateFile = o.TargetFile
	}
	if o.Generations > 0 {
		s.Simulation.Generations = o.Generations
	}
	if o.MaxSolutions > 0 {
		s.Solver.MaxSolutions = o.MaxSolutions
	}
	if o.OutputDir != "" {
		s.Output.OutputDirectory = o.OutputDir
	}
}

// SolverOptions translates the document into the solver's options.
// Validate must have succeeded first.
func (s *Settings) SolverOptions() (solver.Options, error) {
	boundary, err := life.ParseBoundary(s.Simulation.BoundaryCondition)
	if err != nil {
		return solver.Options{}, &ConfigError{Reason: err.Error()}
	}
	backend, err := solver.ParseBackendKind(s.Solver.Backend)
	if err != nil {
		return solver.Options{}, &ConfigError{Reason: err.Error()}
	}
	return solver.Options{
		Generations:      s.Simulation.Generations,
		Boundary:         boundary,
		Backend:          backend,
		MaxSolutions:     s.Solver.MaxSolutions,
		Timeout:          time.Duration(s.Solver.TimeoutSeconds) * time.Second,
		Threads:          int(s.Solver.NumThreads),
		SymmetryBreaking: s.Encoding.SymmetryBreaking,
	}, nil
}

package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/metrics"
)

// BackendKind selects a SAT backend implementation.
type BackendKind int

const (
	BackendSingleThreaded BackendKind = iota
	BackendParallel
)

func (k BackendKind) String() string {
	switch k {
	case BackendSingleThreaded:
		return "single_threaded"
	case BackendParallel:
		return "parallel"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// ParseBackendKind returns the BackendKind named by s.
func ParseBackendKind(s string) (BackendKind, error) {
	switch s {
	case "single_threaded":
		return BackendSingleThreaded, nil
	case "parallel":
		return BackendParallel, nil
	}
	return BackendSingleThreaded, fmt.Errorf("unknown solver backend %q", s)
}

// Options carries everything a reverse problem needs beyond the
// target grid.
type Options struct {
	Generations      int
	Boundary         life.Boundary
	Backend          BackendKind
	MaxSolutions     int
	Timeout          time.Duration
	Threads          int // parallel backend only; 0 means one per CPU
	SymmetryBreaking bool
}

// Validate rejects option combinations the solver cannot honor.
func (o Options) Validate() error {
	if o.Generations < 1 {
		return fmt.Errorf("generations must be at least 1, got %d", o.Generations)
	}
	if o.MaxSolutions < 1 {
		return fmt.Errorf("max solutions must be at least 1, got %d", o.MaxSolutions)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}
	if o.Threads < 0 {
		return fmt.Errorf("thread count must not be negative, got %d", o.Threads)
	}
	return nil
}

// Statistics summarises one orchestrated solve.
type Statistics struct {
	Variables       int
	Clauses         int
	SolveTimeMillis int64
	SolveTimings    []time.Duration
}

// Result is the orchestrator's structured return value.
type Result struct {
	Predecessors []*life.Grid
	Status       Status
	Cause        InterruptCause
	Err          error
	Statistics   Statistics
}

// ReverseProblem wires the allocator, encoder, backend, enumerator,
// and validator together for a single target grid.
type ReverseProblem struct {
	target  *life.Grid
	opts    Options
	logger  *logrus.Logger
	metrics *metrics.Collector
}

// NewReverseProblem validates the configuration against the target.
// A Mirror boundary on a single-row or single-column grid reflects
// the line onto itself ambiguously, so it degrades to Dead with a
// warning rather than guessing.
func NewReverseProblem(target *life.Grid, opts Options, logger *logrus.Logger) (*ReverseProblem, error) {
	if target == nil {
		return nil, fmt.Errorf("target grid is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Boundary == life.Mirror && (target.Width() == 1 || target.Height() == 1) {
		logger.WithFields(logrus.Fields{
			"width":  target.Width(),
			"height": target.Height(),
		}).Warn("mirror boundary is ambiguous for degenerate grids, using dead boundary instead")
		opts.Boundary = life.Dead
	}
	return &ReverseProblem{
		target:  target,
		opts:    opts,
		logger:  logger,
		metrics: metrics.Default,
	}, nil
}

// Target returns the problem's target grid.
func (p *ReverseProblem) Target() *life.Grid {
	return p.target
}

// Options returns the problem's effective options, after any
// boundary degradation.
func (p *ReverseProblem) Options() Options {
	return p.opts
}

func (p *ReverseProblem) backend() Backend {
	switch p.opts.Backend {
	case BackendParallel:
		return NewParallel(p.opts.Threads, p.logger)
	default:
		return NewSingleThreaded(p.logger)
	}
}

// Solve encodes the problem once and enumerates predecessors until
// the configured limit, unsatisfiability, or the timeout.
func (p *ReverseProblem) Solve(ctx context.Context) (*Result, error) {
	encoder, err := NewEncoder(
		p.target.Width(), p.target.Height(), p.opts.Generations,
		p.opts.Boundary, p.opts.SymmetryBreaking, p.logger)
	if err != nil {
		return nil, err
	}
	cnf, err := encoder.Encode(p.target)
	if err != nil {
		return nil, err
	}
	p.logger.WithFields(logrus.Fields{
		"variables": cnf.Variables,
		"clauses":   len(cnf.Clauses),
		"boundary":  p.opts.Boundary,
		"backend":   p.opts.Backend,
	}).Info("encoded reverse problem")
	p.metrics.RecordProblem(cnf.Variables, len(cnf.Clauses))
	// Enumeration appends blocking clauses to cnf; statistics report
	// the encoded formula.
	encodedClauses := len(cnf.Clauses)

	validator := NewValidator(p.opts.Generations, p.opts.Boundary)
	enumerator := NewEnumerator(
		p.backend(), encoder.Allocator(), cnf, validator, p.target,
		p.opts.MaxSolutions, p.opts.Timeout, p.logger)

	start := time.Now()
	enumeration, err := enumerator.Run(ctx)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	for _, timing := range enumeration.SolveTimings {
		p.metrics.ObserveSolve(enumeration.Status.String(), timing)
	}
	p.metrics.RecordPredecessors(len(enumeration.Predecessors))

	return &Result{
		Predecessors: enumeration.Predecessors,
		Status:       enumeration.Status,
		Cause:        enumeration.Cause,
		Err:          enumeration.Err,
		Statistics: Statistics{
			Variables:       cnf.Variables,
			Clauses:         encodedClauses,
			SolveTimeMillis: elapsed.Milliseconds(),
			SolveTimings:    enumeration.SolveTimings,
		},
	}, nil
}

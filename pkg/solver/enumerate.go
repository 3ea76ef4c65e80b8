package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/retrolife/retrolife/pkg/life"
)

// Status describes how an enumeration ended.
type Status int

const (
	// StatusExhausted means the formula became unsatisfiable: every
	// predecessor has been found.
	StatusExhausted Status = iota
	// StatusLimitReached means the solution cap was hit.
	StatusLimitReached
	// StatusInterrupted means the run stopped early; the Cause says
	// why.
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusExhausted:
		return "exhausted"
	case StatusLimitReached:
		return "limit-reached"
	case StatusInterrupted:
		return "interrupted"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// InterruptCause qualifies StatusInterrupted.
type InterruptCause int

const (
	CauseNone InterruptCause = iota
	CauseTimeout
	CauseBackendError
	// CauseInternalInconsistency means a SAT model failed forward
	// validation, which indicates an encoder bug.
	CauseInternalInconsistency
)

func (c InterruptCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseTimeout:
		return "timeout"
	case CauseBackendError:
		return "backend-error"
	case CauseInternalInconsistency:
		return "internal-inconsistency"
	}
	return fmt.Sprintf("unknown(%d)", int(c))
}

// Enumeration is the accumulated output of repeated solve-and-block
// rounds. Predecessors are in backend discovery order.
type Enumeration struct {
	Predecessors []*life.Grid
	Status       Status
	Cause        InterruptCause
	Err          error
	SolveTimings []time.Duration
}

// Enumerator drives the backend to produce distinct predecessors:
// solve, extract the time-0 grid, validate it, block it, repeat.
// Blocking covers time-0 cells only, so evolutions that differ just
// in intermediate generations map to a single predecessor.
type Enumerator struct {
	backend      Backend
	alloc        *Allocator
	cnf          *CNF
	validator    *Validator
	target       *life.Grid
	maxSolutions int
	budget       time.Duration
	logger       *logrus.Entry
	progress     *rate.Limiter
}

// NewEnumerator wires an enumerator over an encoded formula.
func NewEnumerator(backend Backend, alloc *Allocator, cnf *CNF, validator *Validator, target *life.Grid, maxSolutions int, budget time.Duration, logger *logrus.Logger) *Enumerator {
	return &Enumerator{
		backend:      backend,
		alloc:        alloc,
		cnf:          cnf,
		validator:    validator,
		target:       target,
		maxSolutions: maxSolutions,
		budget:       budget,
		logger:       logger.WithField("component", "enumerator"),
		progress:     rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Run enumerates until the cap, unsatisfiability, or budget
// exhaustion. The returned error is reserved for internal failures;
// backend errors and timeouts are reported through the enumeration
// status with any predecessors found so far.
func (e *Enumerator) Run(ctx context.Context) (*Enumeration, error) {
	result := &Enumeration{}
	start := time.Now()

	for {
		left := e.budget - time.Since(start)
		if left <= 0 {
			result.Status = StatusInterrupted
			result.Cause = CauseTimeout
			return result, nil
		}

		solveStart := time.Now()
		outcome, err := e.backend.Solve(ctx, e.cnf, left)
		result.SolveTimings = append(result.SolveTimings, time.Since(solveStart))
		if err != nil {
			e.logger.WithError(err).Warn("backend failed, returning partial results")
			result.Status = StatusInterrupted
			result.Cause = CauseBackendError
			result.Err = err
			return result, nil
		}

		switch outcome.Result {
		case ResultUnsat:
			result.Status = StatusExhausted
			return result, nil
		case ResultTimeout:
			result.Status = StatusInterrupted
			result.Cause = CauseTimeout
			return result, nil
		}

		predecessor, err := e.extract(outcome.Assignment)
		if err != nil {
			return nil, err
		}

		validation, err := e.validator.Validate(predecessor, e.target)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			e.logger.WithFields(logrus.Fields{
				"cell":       fmt.Sprintf("(%d,%d)", validation.DivergentX, validation.DivergentY),
				"generation": validation.Generation,
			}).Error("SAT model failed forward validation, aborting")
			result.Status = StatusInterrupted
			result.Cause = CauseInternalInconsistency
			return result, nil
		}

		result.Predecessors = append(result.Predecessors, predecessor)
		if e.progress.Allow() {
			e.logger.WithField("found", len(result.Predecessors)).Info("predecessor found")
		}

		if len(result.Predecessors) >= e.maxSolutions {
			result.Status = StatusLimitReached
			return result, nil
		}

		if err := e.block(outcome.Assignment); err != nil {
			return nil, err
		}
	}
}

// extract reads the time-0 grid out of a model.
func (e *Enumerator) extract(a Assignment) (*life.Grid, error) {
	width, height, _ := e.alloc.Dimensions()
	var extractErr error
	grid, err := life.FromFunc(width, height, func(x, y int) bool {
		v, err := e.alloc.Cell(x, y, 0)
		if err != nil {
			extractErr = err
			return false
		}
		return a.Value(v)
	})
	if extractErr != nil {
		return nil, extractErr
	}
	return grid, err
}

// block appends the clause excluding the model's time-0 grid: at
// least one initial cell must differ in every later model.
func (e *Enumerator) block(a Assignment) error {
	width, height, _ := e.alloc.Dimensions()
	clause := make(Clause, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v, err := e.alloc.Cell(x, y, 0)
			if err != nil {
				return err
			}
			if a.Value(v) {
				clause = append(clause, -v)
			} else {
				clause = append(clause, v)
			}
		}
	}
	return e.cnf.Block(clause)
}

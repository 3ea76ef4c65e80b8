package solver

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BackendResult is the outcome category of a single backend solve.
type BackendResult int

const (
	ResultSat BackendResult = iota
	ResultUnsat
	ResultTimeout
)

func (r BackendResult) String() string {
	switch r {
	case ResultSat:
		return "sat"
	case ResultUnsat:
		return "unsat"
	case ResultTimeout:
		return "timeout"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// Assignment is a total truth assignment, indexed by variable ID.
// Index 0 is unused.
type Assignment []bool

// Value reports the assigned truth value of variable v.
func (a Assignment) Value(v int) bool {
	return a[v]
}

// Outcome is the result of one backend solve. Assignment is non-nil
// exactly when Result is ResultSat.
type Outcome struct {
	Result     BackendResult
	Assignment Assignment
}

// BackendError reports an I/O or internal failure inside a SAT
// backend.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Backend is the two-operation oracle interface the enumerator
// drives: hand it a formula and a wall-clock budget, get back a
// tagged outcome. Implementations must return total assignments over
// every variable in the formula.
type Backend interface {
	Name() string
	Solve(ctx context.Context, cnf *CNF, timeout time.Duration) (*Outcome, error)
}

// load teaches the formula to a fresh gini instance.
func load(g *gini.Gini, cnf *CNF, backend string) error {
	for _, clause := range cnf.Clauses {
		for _, lit := range clause {
			v := abs(lit)
			if v < 1 || v > cnf.Variables {
				return &BackendError{
					Backend: backend,
					Err:     fmt.Errorf("literal %d outside variable range 1..%d", lit, cnf.Variables),
				}
			}
			if lit > 0 {
				g.Add(z.Var(v).Pos())
			} else {
				g.Add(z.Var(v).Neg())
			}
		}
		g.Add(z.LitNull)
	}
	return nil
}

// extract reads a total assignment for variables 1..n out of a
// satisfied solver.
func extract(g *gini.Gini, n int) Assignment {
	a := make(Assignment, n+1)
	for v := 1; v <= n; v++ {
		a[v] = g.Value(z.Var(v).Pos())
	}
	return a
}

// remaining clamps the caller's budget against any context deadline.
func remaining(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			return until
		}
	}
	return timeout
}

type singleThreaded struct {
	logger *logrus.Entry
}

// NewSingleThreaded returns the deterministic CDCL backend: given
// the same formula and budget it performs the same search.
func NewSingleThreaded(logger *logrus.Logger) Backend {
	return &singleThreaded{
		logger: logger.WithField("backend", "single-threaded"),
	}
}

func (s *singleThreaded) Name() string {
	return "single-threaded"
}

func (s *singleThreaded) Solve(ctx context.Context, cnf *CNF, timeout time.Duration) (*Outcome, error) {
	timeout = remaining(ctx, timeout)
	if timeout <= 0 || ctx.Err() != nil {
		return &Outcome{Result: ResultTimeout}, nil
	}

	g := gini.NewVc(cnf.Variables, len(cnf.Clauses))
	if err := load(g, cnf, s.Name()); err != nil {
		return nil, err
	}

	start := time.Now()
	res := g.Try(timeout)
	s.logger.WithFields(logrus.Fields{
		"result":  res,
		"elapsed": time.Since(start),
	}).Debug("solve finished")

	switch res {
	case 1:
		return &Outcome{Result: ResultSat, Assignment: extract(g, cnf.Variables)}, nil
	case -1:
		return &Outcome{Result: ResultUnsat}, nil
	default:
		return &Outcome{Result: ResultTimeout}, nil
	}
}

type parallel struct {
	threads int
	logger  *logrus.Entry
}

// NewParallel returns the divide-and-conquer backend. The formula is
// split into cubes over its leading time-0 variables and each cube
// is solved on its own worker; the first satisfiable cube wins, and
// the whole problem is unsatisfiable only if every cube is. A
// non-positive thread count means one worker per CPU.
func NewParallel(threads int, logger *logrus.Logger) Backend {
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	return &parallel{
		threads: threads,
		logger:  logger.WithField("backend", "parallel"),
	}
}

func (p *parallel) Name() string {
	return "parallel"
}

func (p *parallel) Solve(ctx context.Context, cnf *CNF, timeout time.Duration) (*Outcome, error) {
	timeout = remaining(ctx, timeout)
	if timeout <= 0 || ctx.Err() != nil {
		return &Outcome{Result: ResultTimeout}, nil
	}

	cubes := splitCubes(cnf.Variables, p.threads)
	if len(cubes) == 1 {
		return (&singleThreaded{logger: p.logger}).Solve(ctx, cnf, timeout)
	}
	p.logger.WithFields(logrus.Fields{
		"cubes":   len(cubes),
		"threads": p.threads,
	}).Debug("splitting problem")

	var (
		mu       sync.Mutex
		sat      *Outcome
		timedOut bool
	)
	foundSat := fmt.Errorf("cube satisfiable")

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.threads)
	deadline := time.Now().Add(timeout)
	for _, cube := range cubes {
		cube := cube
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			g := gini.NewVc(cnf.Variables, len(cnf.Clauses)+len(cube))
			if err := load(g, cnf, p.Name()); err != nil {
				return err
			}
			for _, lit := range cube {
				if lit > 0 {
					g.Add(z.Var(lit).Pos())
				} else {
					g.Add(z.Var(-lit).Neg())
				}
				g.Add(z.LitNull)
			}

			res := solveUntil(groupCtx, g, deadline)
			switch res {
			case 1:
				mu.Lock()
				if sat == nil {
					sat = &Outcome{Result: ResultSat, Assignment: extract(g, cnf.Variables)}
				}
				mu.Unlock()
				return foundSat
			case -1:
				return nil
			default:
				mu.Lock()
				timedOut = true
				mu.Unlock()
				return nil
			}
		})
	}

	err := group.Wait()
	if err != nil && err != foundSat {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	switch {
	case sat != nil:
		return sat, nil
	case timedOut || ctx.Err() != nil:
		return &Outcome{Result: ResultTimeout}, nil
	default:
		return &Outcome{Result: ResultUnsat}, nil
	}
}

// splitCubes enumerates all sign patterns over the first few
// variables, which by construction are time-0 cell variables. The
// number of branch variables is the smallest b with 2^b >= threads,
// capped at the variable count and at 10.
func splitCubes(variables, threads int) [][]int {
	branch := 0
	for 1<<branch < threads && branch < variables && branch < 10 {
		branch++
	}
	cubes := make([][]int, 0, 1<<branch)
	for bits := 0; bits < 1<<branch; bits++ {
		cube := make([]int, branch)
		for i := 0; i < branch; i++ {
			if bits&(1<<i) != 0 {
				cube[i] = i + 1
			} else {
				cube[i] = -(i + 1)
			}
		}
		cubes = append(cubes, cube)
	}
	return cubes
}

// solveUntil runs a background solve and polls for a result,
// honoring both the shared deadline and group cancellation. Returns
// the gini convention: 1 sat, -1 unsat, 0 unknown.
func solveUntil(ctx context.Context, g *gini.Gini, deadline time.Time) int {
	conn := g.GoSolve()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return conn.Stop()
		case <-ticker.C:
			if res, ok := conn.Test(); ok {
				return res
			}
			if !time.Now().Before(deadline) {
				return conn.Stop()
			}
		}
	}
}

package solver

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrolife/retrolife/pkg/life"
)

func defaultOptions() Options {
	return Options{
		Generations:  1,
		Boundary:     life.Dead,
		Backend:      BackendSingleThreaded,
		MaxSolutions: 1000,
		Timeout:      time.Minute,
	}
}

func solveTarget(t *testing.T, target *life.Grid, opts Options) *Result {
	t.Helper()
	problem, err := NewReverseProblem(target, opts, testLogger())
	require.NoError(t, err)
	result, err := problem.Solve(context.Background())
	require.NoError(t, err)
	return result
}

// bruteForce enumerates every possible grid of the target's shape
// and keeps those whose forward evolution reaches the target. Only
// usable for small grids.
func bruteForce(t *testing.T, target *life.Grid, generations int, boundary life.Boundary) map[string]struct{} {
	t.Helper()
	width, height := target.Width(), target.Height()
	cells := width * height
	require.LessOrEqual(t, cells, 16, "brute force only works on tiny grids")

	found := make(map[string]struct{})
	for bits := 0; bits < 1<<cells; bits++ {
		candidate, err := life.FromFunc(width, height, func(x, y int) bool {
			return bits&(1<<(y*width+x)) != 0
		})
		require.NoError(t, err)
		if candidate.StepN(boundary, generations).Equal(target) {
			found[candidate.String()] = struct{}{}
		}
	}
	return found
}

func keys(result *Result) map[string]struct{} {
	set := make(map[string]struct{}, len(result.Predecessors))
	for _, p := range result.Predecessors {
		set[p.String()] = struct{}{}
	}
	return set
}

// checkExhaustive asserts the solver's enumeration matches the
// brute-force predecessor set exactly.
func checkExhaustive(t *testing.T, target *life.Grid, opts Options) map[string]struct{} {
	t.Helper()
	expected := bruteForce(t, target, opts.Generations, opts.Boundary)

	opts.MaxSolutions = len(expected) + 1
	if opts.MaxSolutions < 2 {
		opts.MaxSolutions = 2
	}
	result := solveTarget(t, target, opts)

	assert.Equal(t, StatusExhausted, result.Status)
	assert.Equal(t, expected, keys(result))
	// Pairwise distinct by construction of the key set.
	assert.Len(t, result.Predecessors, len(expected))
	return expected
}

func TestSolveBlinker(t *testing.T) {
	target := mustGrid(t, "000\n111\n000\n")
	expected := checkExhaustive(t, target, defaultOptions())

	// The rotated blinker is a known one-step predecessor.
	_, ok := expected["010\n010\n010\n"]
	assert.True(t, ok)

	result := solveTarget(t, target, defaultOptions())
	found := keys(result)
	_, ok = found["010\n010\n010\n"]
	assert.True(t, ok)
}

func TestSolveAllDead(t *testing.T) {
	target := mustGrid(t, "000\n000\n000\n")
	expected := checkExhaustive(t, target, defaultOptions())

	// The all-dead grid is always its own predecessor.
	_, ok := expected[target.String()]
	assert.True(t, ok)
}

func TestSolveAllDeadUnderEveryBoundary(t *testing.T) {
	target := mustGrid(t, "000\n000\n000\n")
	for _, boundary := range []life.Boundary{life.Dead, life.Wrap, life.Mirror} {
		opts := defaultOptions()
		opts.Boundary = boundary
		opts.Generations = 2
		opts.MaxSolutions = 5000

		result := solveTarget(t, target, opts)
		_, ok := keys(result)[target.String()]
		assert.True(t, ok, "all-dead must be its own predecessor under %s", boundary)
	}
}

func TestSolveCheckerboard(t *testing.T) {
	// Whether the 3x3 checkerboard has any one-step predecessor is
	// decided by brute force, and the solver must agree exactly.
	target := mustGrid(t, "101\n010\n101\n")
	checkExhaustive(t, target, defaultOptions())
}

func TestSolveBlock(t *testing.T) {
	target := mustGrid(t, "0000\n0110\n0110\n0000\n")
	expected := checkExhaustive(t, target, defaultOptions())

	_, ok := expected[target.String()]
	assert.True(t, ok, "a block is a still life, so it must be among its own predecessors")
	assert.NotEmpty(t, expected)
}

func TestSolveGliderHead(t *testing.T) {
	target := mustGrid(t, "00100\n10100\n01100\n00000\n00000\n")
	opts := defaultOptions()
	opts.MaxSolutions = 2

	result := solveTarget(t, target, opts)
	require.NotEmpty(t, result.Predecessors)
	for _, p := range result.Predecessors {
		assert.True(t, p.Step(life.Dead).Equal(target))
	}
}

func TestSolveUnsatisfiable(t *testing.T) {
	// A lone live cell can never survive a step with no neighbors.
	target := mustGrid(t, "1\n")
	result := solveTarget(t, target, defaultOptions())

	assert.Equal(t, StatusExhausted, result.Status)
	assert.Empty(t, result.Predecessors)
}

func TestSolveLimitReached(t *testing.T) {
	target := mustGrid(t, "000\n111\n000\n")
	opts := defaultOptions()
	opts.MaxSolutions = 1

	result := solveTarget(t, target, opts)
	assert.Equal(t, StatusLimitReached, result.Status)
	require.Len(t, result.Predecessors, 1)
	assert.True(t, result.Predecessors[0].Step(life.Dead).Equal(target))
}

func TestSolveRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for _, generations := range []int{1, 2} {
		for trial := 0; trial < 2; trial++ {
			initial, err := life.FromFunc(3, 3, func(x, y int) bool {
				return rnd.Intn(2) == 1
			})
			require.NoError(t, err)
			target := initial.StepN(life.Dead, generations)

			opts := defaultOptions()
			opts.Generations = generations
			opts.MaxSolutions = 5000

			result := solveTarget(t, target, opts)
			_, ok := keys(result)[initial.String()]
			assert.True(t, ok, "enumeration must rediscover the seed grid (generations=%d trial=%d)", generations, trial)
		}
	}
}

func TestSolveWrapRoundTrip(t *testing.T) {
	initial := mustGrid(t, "010\n010\n010\n")
	target := initial.Step(life.Wrap)

	opts := defaultOptions()
	opts.Boundary = life.Wrap
	expected := checkExhaustive(t, target, opts)

	_, ok := expected[initial.String()]
	assert.True(t, ok)
}

func TestSolveMirrorRoundTrip(t *testing.T) {
	initial := mustGrid(t, "110\n010\n000\n")
	target := initial.Step(life.Mirror)

	opts := defaultOptions()
	opts.Boundary = life.Mirror
	expected := checkExhaustive(t, target, opts)

	_, ok := expected[initial.String()]
	assert.True(t, ok)
}

func TestSolveDeterministic(t *testing.T) {
	target := mustGrid(t, "000\n111\n000\n")

	first := solveTarget(t, target, defaultOptions())
	second := solveTarget(t, target, defaultOptions())

	require.Equal(t, len(first.Predecessors), len(second.Predecessors))
	// The single-threaded backend is deterministic, so discovery
	// order is reproducible as well.
	for i := range first.Predecessors {
		assert.True(t, first.Predecessors[i].Equal(second.Predecessors[i]))
	}
}

func TestSolveParallelBackend(t *testing.T) {
	target := mustGrid(t, "000\n111\n000\n")
	opts := defaultOptions()
	opts.Backend = BackendParallel
	opts.Threads = 4
	opts.MaxSolutions = 3

	result := solveTarget(t, target, opts)
	require.NotEmpty(t, result.Predecessors)
	for _, p := range result.Predecessors {
		assert.True(t, p.Step(life.Dead).Equal(target))
	}
}

func TestSolveSymmetryBreaking(t *testing.T) {
	target := mustGrid(t, "000\n111\n000\n")
	opts := defaultOptions()

	full := bruteForce(t, target, 1, life.Dead)

	// The lex-leader constraint keeps exactly the representatives
	// that do not exceed their horizontal flip.
	expected := make(map[string]struct{})
	for key := range full {
		g, err := life.ParseString(key)
		require.NoError(t, err)
		if key <= g.FlipHorizontal().String() {
			expected[key] = struct{}{}
		}
	}

	opts.SymmetryBreaking = true
	opts.MaxSolutions = len(full) + 1
	result := solveTarget(t, target, opts)

	assert.Equal(t, StatusExhausted, result.Status)
	assert.Equal(t, expected, keys(result))

	// Every orbit still has a representative.
	for key := range full {
		g, err := life.ParseString(key)
		require.NoError(t, err)
		flipped := g.FlipHorizontal().String()
		_, direct := keys(result)[key]
		_, mirrored := keys(result)[flipped]
		assert.True(t, direct || mirrored, "orbit of %q lost both representatives", key)
	}
}

func TestSolveMirrorDegenerateFallsBackToDead(t *testing.T) {
	target := mustGrid(t, "000\n")
	opts := defaultOptions()
	opts.Boundary = life.Mirror

	problem, err := NewReverseProblem(target, opts, testLogger())
	require.NoError(t, err)
	assert.Equal(t, life.Dead, problem.Options().Boundary)
}

func TestSolveStatistics(t *testing.T) {
	target := mustGrid(t, "000\n111\n000\n")
	opts := defaultOptions()
	opts.MaxSolutions = 2

	result := solveTarget(t, target, opts)

	encoder, err := NewEncoder(3, 3, 1, life.Dead, false, testLogger())
	require.NoError(t, err)
	cnf, err := encoder.Encode(target)
	require.NoError(t, err)

	assert.Equal(t, cnf.Variables, result.Statistics.Variables)
	assert.Equal(t, encoder.Allocator().Count(), result.Statistics.Variables)
	assert.Equal(t, len(cnf.Clauses), result.Statistics.Clauses)
	assert.Len(t, result.Statistics.SolveTimings, 2)
	assert.GreaterOrEqual(t, result.Statistics.SolveTimeMillis, int64(0))
}

func TestSolveTimeoutSurfacesPartialResults(t *testing.T) {
	target := mustGrid(t, "000\n111\n000\n")
	opts := defaultOptions()
	opts.Timeout = time.Nanosecond

	result := solveTarget(t, target, opts)
	assert.Equal(t, StatusInterrupted, result.Status)
	assert.Equal(t, CauseTimeout, result.Cause)
}

func TestOptionsValidate(t *testing.T) {
	type tc struct {
		Name   string
		Mutate func(*Options)
	}

	for _, tt := range []tc{
		{Name: "zero generations", Mutate: func(o *Options) { o.Generations = 0 }},
		{Name: "zero max solutions", Mutate: func(o *Options) { o.MaxSolutions = 0 }},
		{Name: "zero timeout", Mutate: func(o *Options) { o.Timeout = 0 }},
		{Name: "negative threads", Mutate: func(o *Options) { o.Threads = -1 }},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			opts := defaultOptions()
			tt.Mutate(&opts)
			assert.Error(t, opts.Validate())
		})
	}

	assert.NoError(t, defaultOptions().Validate())
}

package solver

import (
	"fmt"
)

// VarKind distinguishes the roles a SAT variable can play in the
// encoding.
type VarKind int

const (
	// KindCell is the state of cell (x, y) at time t, 0 <= t <= G.
	KindCell VarKind = iota
	// KindN3 is true iff exactly three of the cell's neighbors are
	// alive at time t, 0 <= t < G.
	KindN3
	// KindN2 is true iff exactly two of the cell's neighbors are
	// alive at time t, 0 <= t < G.
	KindN2
)

func (k VarKind) String() string {
	switch k {
	case KindCell:
		return "cell"
	case KindN3:
		return "n3"
	case KindN2:
		return "n2"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// OutOfRangeError is returned when a variable is requested outside
// the allocator's declared bounds.
type OutOfRangeError struct {
	Kind    VarKind
	X, Y, T int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s variable (%d, %d, %d) out of range", e.Kind, e.X, e.Y, e.T)
}

type varKey struct {
	kind    VarKind
	x, y, t int
}

// Allocator is a deterministic bijection between (kind, x, y, t)
// tuples and positive SAT variable IDs. Cell variables for every
// coordinate and time step are assigned eagerly in row-major,
// time-major order so that IDs are stable across runs; N2 and N3
// variables are assigned lazily in first-request order, which the
// encoder keeps deterministic. Auxiliary counter variables receive
// fresh IDs with no tuple identity.
type Allocator struct {
	width       int
	height      int
	generations int
	next        int
	lazy        map[varKey]int
}

// NewAllocator returns an allocator for a width x height grid
// evolved over the given number of generations. Cell variables span
// times 0..generations inclusive.
func NewAllocator(width, height, generations int) (*Allocator, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("allocator dimensions must be positive, got %dx%d", width, height)
	}
	if generations < 1 {
		return nil, fmt.Errorf("allocator needs at least one generation, got %d", generations)
	}
	return &Allocator{
		width:       width,
		height:      height,
		generations: generations,
		next:        width*height*(generations+1) + 1,
		lazy:        make(map[varKey]int),
	}, nil
}

// Cell returns the variable for cell (x, y) at time t.
func (a *Allocator) Cell(x, y, t int) (int, error) {
	if x < 0 || x >= a.width || y < 0 || y >= a.height || t < 0 || t > a.generations {
		return 0, &OutOfRangeError{Kind: KindCell, X: x, Y: y, T: t}
	}
	return t*a.width*a.height + y*a.width + x + 1, nil
}

// Var returns the variable for the given tuple, allocating lazily
// for the count kinds. Repeated calls with the same tuple return the
// same ID.
func (a *Allocator) Var(kind VarKind, x, y, t int) (int, error) {
	if kind == KindCell {
		return a.Cell(x, y, t)
	}
	if x < 0 || x >= a.width || y < 0 || y >= a.height || t < 0 || t >= a.generations {
		return 0, &OutOfRangeError{Kind: kind, X: x, Y: y, T: t}
	}
	key := varKey{kind: kind, x: x, y: y, t: t}
	if id, ok := a.lazy[key]; ok {
		return id, nil
	}
	id := a.next
	a.next++
	a.lazy[key] = id
	return id, nil
}

// Aux returns a fresh variable with no tuple identity, used for the
// internal rungs of the cardinality ladders and for symmetry
// prefix-equality chains.
func (a *Allocator) Aux() int {
	id := a.next
	a.next++
	return id
}

// Count returns the number of variables allocated so far.
func (a *Allocator) Count() int {
	return a.next - 1
}

// Dimensions returns the declared width, height, and generation
// count.
func (a *Allocator) Dimensions() (width, height, generations int) {
	return a.width, a.height, a.generations
}

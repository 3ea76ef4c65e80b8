package solver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/retrolife/retrolife/pkg/life"
)

// EncodingError indicates the encoder was asked to violate one of
// its own invariants.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error: %s", e.Reason)
}

// clit is a counter literal with compile-time constant folding: a
// ladder rung whose value is already known at encode time carries no
// variable.
type clit struct {
	known bool
	value bool
	lit   int
}

var (
	ctrue  = clit{known: true, value: true}
	cfalse = clit{known: true, value: false}
)

func lc(lit int) clit {
	return clit{lit: lit}
}

// Encoder emits the CNF whose models are exactly the (G+1)-step Life
// evolutions ending in the target grid. Out-of-range neighbors under
// the Dead boundary are excluded from the cardinality ladders rather
// than materialised as an always-false variable.
type Encoder struct {
	alloc       *Allocator
	builder     *Builder
	width       int
	height      int
	generations int
	boundary    life.Boundary
	symmetry    bool
	logger      *logrus.Entry
}

// NewEncoder prepares an encoder for a width x height problem over
// the given number of generations.
func NewEncoder(width, height, generations int, boundary life.Boundary, symmetry bool, logger *logrus.Logger) (*Encoder, error) {
	if width < 1 || height < 1 {
		return nil, &EncodingError{Reason: fmt.Sprintf("grid dimensions must be positive, got %dx%d", width, height)}
	}
	if generations < 1 {
		return nil, &EncodingError{Reason: fmt.Sprintf("generations must be at least 1, got %d", generations)}
	}
	alloc, err := NewAllocator(width, height, generations)
	if err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}
	return &Encoder{
		alloc:       alloc,
		builder:     NewBuilder(),
		width:       width,
		height:      height,
		generations: generations,
		boundary:    boundary,
		symmetry:    symmetry,
		logger:      logger.WithField("component", "encoder"),
	}, nil
}

// Allocator exposes the encoder's variable allocator for model
// extraction and blocking-clause construction.
func (e *Encoder) Allocator() *Allocator {
	return e.alloc
}

// Encode emits the full formula: target fixing, per-cell transition
// constraints for every generation, and the optional lex-leader
// symmetry clauses on the initial generation.
func (e *Encoder) Encode(target *life.Grid) (*CNF, error) {
	if target == nil {
		return nil, &EncodingError{Reason: "target grid is nil"}
	}
	if target.Width() != e.width || target.Height() != e.height {
		return nil, &EncodingError{Reason: fmt.Sprintf(
			"target grid is %dx%d, problem is %dx%d",
			target.Width(), target.Height(), e.width, e.height)}
	}

	if err := e.encodeTarget(target); err != nil {
		return nil, err
	}
	for t := 0; t < e.generations; t++ {
		for y := 0; y < e.height; y++ {
			for x := 0; x < e.width; x++ {
				if err := e.encodeCell(x, y, t); err != nil {
					return nil, err
				}
			}
		}
	}
	if e.symmetry {
		if err := e.encodeSymmetry(); err != nil {
			return nil, err
		}
	}

	cnf, err := e.builder.Freeze(e.alloc.Count())
	if err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}
	e.logger.WithFields(logrus.Fields{
		"variables": cnf.Variables,
		"clauses":   len(cnf.Clauses),
	}).Debug("encoded reverse problem")
	return cnf, nil
}

// encodeTarget fixes the final generation to the target with unit
// clauses.
func (e *Encoder) encodeTarget(target *life.Grid) error {
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			v, err := e.alloc.Cell(x, y, e.generations)
			if err != nil {
				return &EncodingError{Reason: err.Error()}
			}
			if target.Get(x, y) {
				err = e.builder.Add(v)
			} else {
				err = e.builder.Add(-v)
			}
			if err != nil {
				return &EncodingError{Reason: err.Error()}
			}
		}
	}
	return nil
}

// encodeCell emits the transition constraint for one cell between t
// and t+1: next ⇔ N3 ∨ (cur ∧ N2), with N3 and N2 bound to the
// exactly-three and exactly-two rungs of a sequential counter over
// the neighbor literals.
func (e *Encoder) encodeCell(x, y, t int) error {
	cur, err := e.alloc.Cell(x, y, t)
	if err != nil {
		return &EncodingError{Reason: err.Error()}
	}
	next, err := e.alloc.Cell(x, y, t+1)
	if err != nil {
		return &EncodingError{Reason: err.Error()}
	}

	neighbors, err := e.neighborLits(x, y, t)
	if err != nil {
		return err
	}
	s2, s3, s4, err := e.thresholds(neighbors)
	if err != nil {
		return err
	}

	n3, err := e.alloc.Var(KindN3, x, y, t)
	if err != nil {
		return &EncodingError{Reason: err.Error()}
	}
	n2, err := e.alloc.Var(KindN2, x, y, t)
	if err != nil {
		return &EncodingError{Reason: err.Error()}
	}
	if err := e.bindExactly(n3, s3, s4); err != nil {
		return err
	}
	if err := e.bindExactly(n2, s2, s3); err != nil {
		return err
	}

	for _, clause := range [][]int{
		{-next, n3, cur},
		{-next, n3, n2},
		{next, -n3},
		{next, -cur, -n2},
	} {
		if err := e.builder.Add(clause...); err != nil {
			return &EncodingError{Reason: err.Error()}
		}
	}
	return nil
}

// neighborLits resolves the Moore neighborhood of (x, y) at time t
// to cell literals under the boundary policy. Wrap and Mirror may
// alias several offsets onto the same variable; the resulting
// repeats are deliberate and count with multiplicity, matching the
// forward simulation.
func (e *Encoder) neighborLits(x, y, t int) ([]int, error) {
	lits := make([]int, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			switch e.boundary {
			case life.Dead:
				if nx < 0 || nx >= e.width || ny < 0 || ny >= e.height {
					continue
				}
			case life.Wrap:
				nx = ((nx % e.width) + e.width) % e.width
				ny = ((ny % e.height) + e.height) % e.height
			case life.Mirror:
				if nx < 0 {
					nx = -nx - 1
				} else if nx >= e.width {
					nx = 2*e.width - 1 - nx
				}
				if ny < 0 {
					ny = -ny - 1
				} else if ny >= e.height {
					ny = 2*e.height - 1 - ny
				}
			}
			v, err := e.alloc.Cell(nx, ny, t)
			if err != nil {
				return nil, &EncodingError{Reason: err.Error()}
			}
			lits = append(lits, v)
		}
	}
	return lits, nil
}

// thresholds builds a sequential counter over lits and returns rungs
// for the at-least-2, at-least-3, and at-least-4 thresholds.
func (e *Encoder) thresholds(lits []int) (s2, s3, s4 clit, err error) {
	prev := [5]clit{ctrue, cfalse, cfalse, cfalse, cfalse}
	for _, x := range lits {
		var cur [5]clit
		cur[0] = ctrue
		for j := 1; j <= 4; j++ {
			cur[j], err = e.orAnd(prev[j], prev[j-1], x)
			if err != nil {
				return
			}
		}
		prev = cur
	}
	return prev[2], prev[3], prev[4], nil
}

// orAnd returns a counter literal v with v ⇔ a ∨ (b ∧ x), folding
// constant rungs so no clause mentions a known value.
func (e *Encoder) orAnd(a, b clit, x int) (clit, error) {
	if a.known && a.value {
		return ctrue, nil
	}
	if b.known && !b.value {
		return a, nil
	}
	if a.known { // a is constant false: v ⇔ b ∧ x
		if b.known { // b is constant true: v ⇔ x
			return lc(x), nil
		}
		v := e.alloc.Aux()
		for _, clause := range [][]int{
			{-v, b.lit},
			{-v, x},
			{v, -b.lit, -x},
		} {
			if err := e.builder.Add(clause...); err != nil {
				return cfalse, &EncodingError{Reason: err.Error()}
			}
		}
		return lc(v), nil
	}
	if b.known { // b is constant true: v ⇔ a ∨ x
		v := e.alloc.Aux()
		for _, clause := range [][]int{
			{-a.lit, v},
			{-x, v},
			{-v, a.lit, x},
		} {
			if err := e.builder.Add(clause...); err != nil {
				return cfalse, &EncodingError{Reason: err.Error()}
			}
		}
		return lc(v), nil
	}
	v := e.alloc.Aux()
	for _, clause := range [][]int{
		{-a.lit, v},
		{-b.lit, -x, v},
		{-v, a.lit, b.lit},
		{-v, a.lit, x},
	} {
		if err := e.builder.Add(clause...); err != nil {
			return cfalse, &EncodingError{Reason: err.Error()}
		}
	}
	return lc(v), nil
}

// bindExactly constrains n ⇔ sk ∧ ¬sk1, the "exactly k" window
// between two adjacent ladder rungs.
func (e *Encoder) bindExactly(n int, sk, sk1 clit) error {
	if (sk.known && !sk.value) || (sk1.known && sk1.value) {
		if err := e.builder.Add(-n); err != nil {
			return &EncodingError{Reason: err.Error()}
		}
		return nil
	}
	if !sk.known {
		if err := e.builder.Add(-n, sk.lit); err != nil {
			return &EncodingError{Reason: err.Error()}
		}
	}
	if !sk1.known {
		if err := e.builder.Add(-n, -sk1.lit); err != nil {
			return &EncodingError{Reason: err.Error()}
		}
	}
	reverse := []int{n}
	if !sk.known {
		reverse = append(reverse, -sk.lit)
	}
	if !sk1.known {
		reverse = append(reverse, sk1.lit)
	}
	if err := e.builder.Add(reverse...); err != nil {
		return &EncodingError{Reason: err.Error()}
	}
	return nil
}

// encodeSymmetry adds a lex-leader constraint on the initial
// generation against its horizontal flip, so enumeration returns one
// representative per mirror orbit. The prefix-equality chain uses
// full biconditionals; anything weaker either re-admits the mirror
// image or excludes valid models.
func (e *Encoder) encodeSymmetry() error {
	type pair struct {
		a, b int
	}
	var pairs []pair
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			mx := e.width - 1 - x
			if mx == x {
				continue
			}
			a, err := e.alloc.Cell(x, y, 0)
			if err != nil {
				return &EncodingError{Reason: err.Error()}
			}
			b, err := e.alloc.Cell(mx, y, 0)
			if err != nil {
				return &EncodingError{Reason: err.Error()}
			}
			pairs = append(pairs, pair{a: a, b: b})
		}
	}

	eprev := ctrue
	for i, p := range pairs {
		// Prefix equal so far ⇒ a must not exceed b.
		var err error
		if eprev.known {
			err = e.builder.Add(-p.a, p.b)
		} else {
			err = e.builder.Add(-eprev.lit, -p.a, p.b)
		}
		if err != nil {
			return &EncodingError{Reason: err.Error()}
		}

		if i == len(pairs)-1 {
			break
		}

		ek := e.alloc.Aux()
		var clauses [][]int
		if eprev.known {
			clauses = [][]int{
				{-ek, -p.a, p.b},
				{-ek, p.a, -p.b},
				{ek, -p.a, -p.b},
				{ek, p.a, p.b},
			}
		} else {
			clauses = [][]int{
				{-ek, eprev.lit},
				{-ek, -p.a, p.b},
				{-ek, p.a, -p.b},
				{ek, -eprev.lit, -p.a, -p.b},
				{ek, -eprev.lit, p.a, p.b},
			}
		}
		for _, clause := range clauses {
			if err := e.builder.Add(clause...); err != nil {
				return &EncodingError{Reason: err.Error()}
			}
		}
		eprev = lc(ek)
	}
	return nil
}

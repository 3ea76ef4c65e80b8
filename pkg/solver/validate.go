package solver

import (
	"fmt"

	"github.com/retrolife/retrolife/pkg/life"
)

// ErrShapeMismatch is returned when a candidate and target disagree
// on dimensions.
type ErrShapeMismatch struct {
	CandidateWidth, CandidateHeight int
	TargetWidth, TargetHeight       int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: candidate is %dx%d, target is %dx%d",
		e.CandidateWidth, e.CandidateHeight, e.TargetWidth, e.TargetHeight)
}

// Validation is the outcome of a forward-simulation check. When
// Valid is false, DivergentX/DivergentY name the first differing
// cell in row-major order and Generation the step at which the
// comparison failed.
type Validation struct {
	Valid      bool
	DivergentX int
	DivergentY int
	Generation int
	Evolution  []*life.Grid
}

// Validator re-derives a candidate's claim independently of the
// encoder: it steps the candidate forward and compares against the
// target.
type Validator struct {
	generations int
	boundary    life.Boundary
}

func NewValidator(generations int, boundary life.Boundary) *Validator {
	return &Validator{
		generations: generations,
		boundary:    boundary,
	}
}

// Validate forward-simulates candidate for the configured number of
// generations and compares the result with target. The full
// evolution path, candidate first, is recorded in the result.
func (v *Validator) Validate(candidate, target *life.Grid) (*Validation, error) {
	if candidate.Width() != target.Width() || candidate.Height() != target.Height() {
		return nil, &ErrShapeMismatch{
			CandidateWidth:  candidate.Width(),
			CandidateHeight: candidate.Height(),
			TargetWidth:     target.Width(),
			TargetHeight:    target.Height(),
		}
	}

	evolution := make([]*life.Grid, 0, v.generations+1)
	evolution = append(evolution, candidate)
	current := candidate
	for i := 0; i < v.generations; i++ {
		current = current.Step(v.boundary)
		evolution = append(evolution, current)
	}

	for y := 0; y < target.Height(); y++ {
		for x := 0; x < target.Width(); x++ {
			if current.Get(x, y) != target.Get(x, y) {
				return &Validation{
					Valid:      false,
					DivergentX: x,
					DivergentY: y,
					Generation: v.generations,
					Evolution:  evolution,
				}, nil
			}
		}
	}
	return &Validation{Valid: true, Evolution: evolution}, nil
}

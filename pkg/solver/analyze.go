package solver

import (
	"fmt"

	"github.com/retrolife/retrolife/pkg/life"
)

// ComplexityLevel buckets the expected difficulty of a reverse
// problem by formula size.
type ComplexityLevel int

const (
	ComplexityLow ComplexityLevel = iota
	ComplexityMedium
	ComplexityHigh
	ComplexityVeryHigh
)

func (l ComplexityLevel) String() string {
	switch l {
	case ComplexityLow:
		return "low"
	case ComplexityMedium:
		return "medium"
	case ComplexityHigh:
		return "high"
	case ComplexityVeryHigh:
		return "very high"
	}
	return fmt.Sprintf("unknown(%d)", int(l))
}

// Likelihood is a rough solvability guess from target shape alone.
type Likelihood int

const (
	LikelihoodLow Likelihood = iota
	LikelihoodMedium
	LikelihoodHigh
)

func (l Likelihood) String() string {
	switch l {
	case LikelihoodLow:
		return "low"
	case LikelihoodMedium:
		return "medium"
	case LikelihoodHigh:
		return "high"
	}
	return fmt.Sprintf("unknown(%d)", int(l))
}

// Analysis is a pre-solve estimate of a reverse problem: formula
// size, difficulty bucket, and target-shape heuristics.
type Analysis struct {
	Width              int
	Height             int
	Generations        int
	EstimatedVariables int
	EstimatedClauses   int
	Complexity         ComplexityLevel
	Density            float64
	Likelihood         Likelihood
	KnownPattern       string
	Recommendations    []string
}

// Analyze estimates the cost and solvability of reversing target
// over the given number of generations, without encoding anything.
func Analyze(target *life.Grid, generations int) *Analysis {
	cells := target.Width() * target.Height()
	// Per transition cell: two count variables plus roughly twenty
	// ladder rungs; roughly forty clauses after constant folding.
	variables := cells*(generations+1) + cells*generations*22
	clauses := cells + cells*generations*40

	level := ComplexityLow
	switch {
	case variables >= 100000:
		level = ComplexityVeryHigh
	case variables >= 10000:
		level = ComplexityHigh
	case variables >= 1000:
		level = ComplexityMedium
	}

	density := float64(target.Population()) / float64(cells)
	pattern := detectPattern(target)

	likelihood := LikelihoodMedium
	switch {
	case target.Empty():
		likelihood = LikelihoodHigh
	case target.Population() == cells:
		likelihood = LikelihoodLow
	case pattern != "":
		likelihood = LikelihoodHigh
	case density > 0.8:
		likelihood = LikelihoodLow
	}

	var recommendations []string
	if level >= ComplexityHigh {
		recommendations = append(recommendations,
			"consider reducing the grid size or the number of generations")
	}
	if density > 0.7 {
		recommendations = append(recommendations,
			"dense targets rarely have predecessors, double-check the target")
	}
	if generations > 5 {
		recommendations = append(recommendations,
			"each additional generation multiplies the search space")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "problem looks reasonable to solve")
	}

	return &Analysis{
		Width:              target.Width(),
		Height:             target.Height(),
		Generations:        generations,
		EstimatedVariables: variables,
		EstimatedClauses:   clauses,
		Complexity:         level,
		Density:            density,
		Likelihood:         likelihood,
		KnownPattern:       pattern,
		Recommendations:    recommendations,
	}
}

// detectPattern recognises a few well-known Life patterns anywhere
// on the target, ignoring surrounding dead space.
func detectPattern(target *life.Grid) string {
	var xs, ys []int
	for y := 0; y < target.Height(); y++ {
		for x := 0; x < target.Width(); x++ {
			if target.Get(x, y) {
				xs = append(xs, x)
				ys = append(ys, y)
			}
		}
	}
	switch len(xs) {
	case 3:
		if isBlinker(xs, ys) {
			return "blinker"
		}
	case 4:
		if isBlock(xs, ys) {
			return "block"
		}
	case 5:
		if isGlider(target, xs, ys) {
			return "glider"
		}
	}
	return ""
}

func isBlinker(xs, ys []int) bool {
	horizontal := ys[0] == ys[1] && ys[1] == ys[2] &&
		xs[1] == xs[0]+1 && xs[2] == xs[1]+1
	vertical := xs[0] == xs[1] && xs[1] == xs[2] &&
		ys[1] == ys[0]+1 && ys[2] == ys[1]+1
	return horizontal || vertical
}

func isBlock(xs, ys []int) bool {
	// Row-major scan order guarantees the corner ordering.
	return xs[0] == xs[2] && xs[1] == xs[3] && xs[1] == xs[0]+1 &&
		ys[0] == ys[1] && ys[2] == ys[3] && ys[2] == ys[0]+1
}

func isGlider(target *life.Grid, xs, ys []int) bool {
	minX, minY := xs[0], ys[0]
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
	}
	// A glider's bounding box is always 3x3 with five live cells; a
	// period-four check against its own evolution separates it from
	// other pentominoes without a rotation table.
	maxX, maxY := minX, minY
	for i := range xs {
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	if maxX-minX != 2 || maxY-minY != 2 {
		return false
	}
	stepped := target.StepN(life.Dead, 4)
	if stepped.Population() != 5 {
		return false
	}
	// A glider moves one cell along the diagonal it faces. Directions
	// that would carry it past the edge are skipped rather than
	// misreporting boundary effects.
	for _, d := range [][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}} {
		if minX+d[0] < 0 || maxX+d[0] >= target.Width() || minY+d[1] < 0 || maxY+d[1] >= target.Height() {
			continue
		}
		moved := true
		for i := range xs {
			if !stepped.Get(xs[i]+d[0], ys[i]+d[1]) {
				moved = false
				break
			}
		}
		if moved {
			return true
		}
	}
	return false
}

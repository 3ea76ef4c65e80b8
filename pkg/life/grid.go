package life

import (
	"fmt"
	"strings"
)

// Boundary determines how neighbor lookups beyond the edge of a grid
// are resolved.
type Boundary int

const (
	// Dead treats out-of-range cells as permanently dead.
	Dead Boundary = iota
	// Wrap treats the grid as a torus.
	Wrap
	// Mirror reflects out-of-range coordinates back across the edge.
	Mirror
)

func (b Boundary) String() string {
	switch b {
	case Dead:
		return "dead"
	case Wrap:
		return "wrap"
	case Mirror:
		return "mirror"
	}
	return fmt.Sprintf("unknown(%d)", int(b))
}

// ParseBoundary returns the Boundary named by s.
func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dead":
		return Dead, nil
	case "wrap":
		return Wrap, nil
	case "mirror":
		return Mirror, nil
	}
	return Dead, fmt.Errorf("unknown boundary condition %q", s)
}

// Grid is an immutable binary cell matrix. The zero value is not
// usable; construct grids with New, FromRows, or FromFunc.
type Grid struct {
	width  int
	height int
	cells  []bool
}

// New returns an all-dead grid of the given dimensions.
func New(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}, nil
}

// FromRows builds a grid from row-major cell values. Every row must
// have the same nonzero length.
func FromRows(rows [][]bool) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("grid must have at least one row and one column")
	}
	width := len(rows[0])
	g := &Grid{
		width:  width,
		height: len(rows),
		cells:  make([]bool, 0, width*len(rows)),
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has length %d, expected %d", y, len(row), width)
		}
		g.cells = append(g.cells, row...)
	}
	return g, nil
}

// FromFunc builds a grid by evaluating f at every coordinate.
func FromFunc(width, height int, f func(x, y int) bool) (*Grid, error) {
	g, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = f(x, y)
		}
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Get reports whether the cell at (x, y) is alive. Coordinates must
// be in range.
func (g *Grid) Get(x, y int) bool {
	return g.cells[y*g.width+x]
}

// Population returns the number of living cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// Empty reports whether no cell is alive.
func (g *Grid) Empty() bool {
	return g.Population() == 0
}

// Equal reports whether o has the same dimensions and cell values.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.width != o.width || g.height != o.height {
		return false
	}
	for i, c := range g.cells {
		if c != o.cells[i] {
			return false
		}
	}
	return true
}

// String renders the grid one row per line, '1' for alive and '0'
// for dead. The result round-trips through Parse.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.height * (g.width + 1))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.Get(x, y) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// neighborAt resolves the cell value at a possibly out-of-range
// coordinate under the boundary policy.
func (g *Grid) neighborAt(x, y int, b Boundary) bool {
	switch b {
	case Dead:
		if x < 0 || x >= g.width || y < 0 || y >= g.height {
			return false
		}
	case Wrap:
		x = ((x % g.width) + g.width) % g.width
		y = ((y % g.height) + g.height) % g.height
	case Mirror:
		if x < 0 {
			x = -x - 1
		} else if x >= g.width {
			x = 2*g.width - 1 - x
		}
		if y < 0 {
			y = -y - 1
		} else if y >= g.height {
			y = 2*g.height - 1 - y
		}
	}
	return g.Get(x, y)
}

// NeighborCount returns the number of living cells in the Moore
// neighborhood of (x, y) under the boundary policy.
func (g *Grid) NeighborCount(x, y int, b Boundary) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.neighborAt(x+dx, y+dy, b) {
				n++
			}
		}
	}
	return n
}

// NextState applies the Life rule to a single cell: a living cell
// survives with 2 or 3 neighbors, a dead cell is born with exactly 3.
func NextState(alive bool, neighbors int) bool {
	if alive {
		return neighbors == 2 || neighbors == 3
	}
	return neighbors == 3
}

// Step returns the grid after one generation under the boundary
// policy. The receiver is unchanged.
func (g *Grid) Step(b Boundary) *Grid {
	next := &Grid{
		width:  g.width,
		height: g.height,
		cells:  make([]bool, len(g.cells)),
	}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			next.cells[y*g.width+x] = NextState(g.Get(x, y), g.NeighborCount(x, y, b))
		}
	}
	return next
}

// StepN returns the grid after n generations.
func (g *Grid) StepN(b Boundary, n int) *Grid {
	cur := g
	for i := 0; i < n; i++ {
		cur = cur.Step(b)
	}
	return cur
}

// FlipHorizontal returns the grid mirrored across its vertical axis.
func (g *Grid) FlipHorizontal() *Grid {
	flipped, _ := FromFunc(g.width, g.height, func(x, y int) bool {
		return g.Get(g.width-1-x, y)
	})
	return flipped
}

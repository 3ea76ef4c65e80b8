package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/retrolife/retrolife/pkg/life"
	"github.com/retrolife/retrolife/pkg/solver"
)

// Format names a rendering of a solve result.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatVisual Format = "visual"
)

// Document is the serialisable form of a solve result. The field
// tags drive both the JSON and YAML renderings.
type Document struct {
	Target       []string          `json:"target"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Generations  int               `json:"generations"`
	Boundary     string            `json:"boundary"`
	Status       string            `json:"status"`
	Cause        string            `json:"cause,omitempty"`
	Predecessors []PredecessorItem `json:"predecessors"`
	Statistics   StatisticsItem    `json:"statistics"`
}

type PredecessorItem struct {
	Index     int        `json:"index"`
	Grid      []string   `json:"grid"`
	Evolution [][]string `json:"evolution,omitempty"`
}

type StatisticsItem struct {
	Variables       int     `json:"variables"`
	Clauses         int     `json:"clauses"`
	SolveTimeMillis int64   `json:"solve_time_ms"`
	SolveTimesMs    []int64 `json:"per_solve_ms"`
}

// rows renders a grid as its '0'/'1' row strings.
func rows(g *life.Grid) []string {
	lines := strings.Split(strings.TrimRight(g.String(), "\n"), "\n")
	return lines
}

// NewDocument assembles a document from a solve result. When
// withEvolution is set, each predecessor carries its full forward
// path to the target.
func NewDocument(result *solver.Result, target *life.Grid, opts solver.Options, withEvolution bool) *Document {
	doc := &Document{
		Target:      rows(target),
		Width:       target.Width(),
		Height:      target.Height(),
		Generations: opts.Generations,
		Boundary:    opts.Boundary.String(),
		Status:      result.Status.String(),
		Statistics: StatisticsItem{
			Variables:       result.Statistics.Variables,
			Clauses:         result.Statistics.Clauses,
			SolveTimeMillis: result.Statistics.SolveTimeMillis,
		},
	}
	if result.Status == solver.StatusInterrupted {
		doc.Cause = result.Cause.String()
	}
	for _, timing := range result.Statistics.SolveTimings {
		doc.Statistics.SolveTimesMs = append(doc.Statistics.SolveTimesMs, timing.Milliseconds())
	}
	for i, predecessor := range result.Predecessors {
		item := PredecessorItem{
			Index: i + 1,
			Grid:  rows(predecessor),
		}
		if withEvolution {
			current := predecessor
			item.Evolution = append(item.Evolution, rows(current))
			for g := 0; g < opts.Generations; g++ {
				current = current.Step(opts.Boundary)
				item.Evolution = append(item.Evolution, rows(current))
			}
		}
		doc.Predecessors = append(doc.Predecessors, item)
	}
	return doc
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML renders the document as YAML via its JSON tags.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// GridString renders a grid for the terminal. The visual form uses
// filled and middle-dot glyphs instead of digits.
func GridString(g *life.Grid, visual bool) string {
	if !visual {
		return g.String()
	}
	var b strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Get(x, y) {
				b.WriteRune('█')
			} else {
				b.WriteRune('·')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render produces the requested format of a solve result.
func Render(format Format, result *solver.Result, target *life.Grid, opts solver.Options, withEvolution bool) (string, error) {
	switch format {
	case FormatJSON:
		data, err := NewDocument(result, target, opts, withEvolution).JSON()
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case FormatYAML:
		data, err := NewDocument(result, target, opts, withEvolution).YAML()
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatText, FormatVisual, "":
		return renderText(result, target, opts, format == FormatVisual, withEvolution), nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

func renderText(result *solver.Result, target *life.Grid, opts solver.Options, visual, withEvolution bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target (%dx%d, %d generation(s) back, %s boundary):\n",
		target.Width(), target.Height(), opts.Generations, opts.Boundary)
	b.WriteString(GridString(target, visual))
	fmt.Fprintf(&b, "\nStatus: %s", result.Status)
	if result.Status == solver.StatusInterrupted {
		fmt.Fprintf(&b, " (%s)", result.Cause)
	}
	fmt.Fprintf(&b, "\nPredecessors found: %d\n", len(result.Predecessors))
	fmt.Fprintf(&b, "Formula: %d variables, %d clauses, solved in %dms\n",
		result.Statistics.Variables, result.Statistics.Clauses, result.Statistics.SolveTimeMillis)

	for i, predecessor := range result.Predecessors {
		fmt.Fprintf(&b, "\nPredecessor %d:\n", i+1)
		b.WriteString(GridString(predecessor, visual))
		if withEvolution {
			current := predecessor
			for g := 1; g <= opts.Generations; g++ {
				current = current.Step(opts.Boundary)
				fmt.Fprintf(&b, "after generation %d:\n", g)
				b.WriteString(GridString(current, visual))
			}
		}
	}
	return b.String()
}

// Save writes each predecessor to its own target-state file under
// dir, plus per-generation intermediate files when requested.
func Save(dir string, result *solver.Result, opts solver.Options, saveIntermediate bool) error {
	if len(result.Predecessors) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	for i, predecessor := range result.Predecessors {
		path := filepath.Join(dir, fmt.Sprintf("solution_%03d.txt", i+1))
		if err := life.WriteFile(predecessor, path); err != nil {
			return err
		}
		if !saveIntermediate {
			continue
		}
		current := predecessor
		for g := 1; g <= opts.Generations; g++ {
			current = current.Step(opts.Boundary)
			genPath := filepath.Join(dir, fmt.Sprintf("solution_%03d_gen_%03d.txt", i+1, g))
			if err := life.WriteFile(current, genPath); err != nil {
				return err
			}
		}
	}
	return nil
}

package life

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ParseError describes a malformed target-state file.
type ParseError struct {
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Reason)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// Parse reads a grid in the plain-text target-state format: one row
// per line, '1' alive, '0' dead. Leading and trailing whitespace on
// each line is stripped and blank lines are skipped. All non-blank
// lines must have the same length.
func Parse(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	var rows [][]bool
	width := 0
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if width == 0 {
			width = len(line)
		} else if len(line) != width {
			return nil, &ParseError{
				Line:   lineno,
				Reason: fmt.Sprintf("row has length %d, expected %d", len(line), width),
			}
		}
		row := make([]bool, 0, width)
		for col, ch := range line {
			switch ch {
			case '0':
				row = append(row, false)
			case '1':
				row = append(row, true)
			default:
				return nil, &ParseError{
					Line:   lineno,
					Column: col + 1,
					Reason: fmt.Sprintf("invalid character %q, only '0' and '1' are allowed", ch),
				}
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ParseError{Reason: "no rows found"}
	}
	return FromRows(rows)
}

// ParseString parses a grid from its string representation.
func ParseString(s string) (*Grid, error) {
	return Parse(strings.NewReader(s))
}

// LoadFile reads a target-state file from disk.
func LoadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open grid file %s", path)
	}
	defer f.Close()
	g, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse grid file %s", path)
	}
	return g, nil
}

// WriteFile writes the grid to path in the target-state format,
// creating parent directories as needed.
func WriteFile(g *Grid, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, []byte(g.String()), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write grid file %s", path)
	}
	return nil
}

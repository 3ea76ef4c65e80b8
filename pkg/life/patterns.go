package life

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Well-known patterns used by the setup command and by tests.
var patterns = map[string]string{
	"blinker": "000\n111\n000\n",
	"block":   "0000\n0110\n0110\n0000\n",
	"glider":  "00100\n10100\n01100\n00000\n00000\n",
	"beacon":  "110000\n110000\n001100\n001100\n",
}

// Pattern returns the named example pattern, or nil if the name is
// unknown.
func Pattern(name string) *Grid {
	s, ok := patterns[name]
	if !ok {
		return nil
	}
	g, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return g
}

// PatternNames lists the available example patterns.
func PatternNames() []string {
	return []string{"beacon", "blinker", "block", "glider"}
}

// WriteExamples writes every example pattern to dir as a
// target-state file.
func WriteExamples(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	for _, name := range PatternNames() {
		path := filepath.Join(dir, name+".txt")
		if err := WriteFile(Pattern(name), path); err != nil {
			return err
		}
	}
	return nil
}

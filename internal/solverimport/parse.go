// Package solverimport reads placements chosen by an external ILP solver.
//
// The solver output is line oriented. A line is relevant when it contains
// "m_" and " 1"; its payload reads m_<x>_<y>_<type> followed by whitespace
// and the variable value. Every other line is noise and is skipped.
package solverimport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Entry is one selected placement: tile type index Type anchored at (X, Y).
type Entry struct {
	Type int
	X    int
	Y    int
}

func (e Entry) String() string {
	return fmt.Sprintf("m_%d_%d_%d", e.X, e.Y, e.Type)
}

// ErrorKind enumerates import failures.
type ErrorKind uint8

const (
	// MalformedLine indicates a selected line whose payload cannot be decoded.
	MalformedLine ErrorKind = iota + 1
)

// ImportError aborts a parse.
type ImportError struct {
	Kind ErrorKind
	Line int    // 1-based
	Text string // offending line
	Err  error
}

func (e *ImportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case MalformedLine:
		if e.Err != nil {
			return fmt.Sprintf("line %d: malformed placement %q: %v", e.Line, e.Text, e.Err)
		}
		return fmt.Sprintf("line %d: malformed placement %q", e.Line, e.Text)
	default:
		return fmt.Sprintf("line %d: import error kind=%d", e.Line, e.Kind)
	}
}

func (e *ImportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Selected reports whether line carries a placement.
func Selected(line string) bool {
	return strings.Contains(line, "m_") && strings.Contains(line, " 1")
}

// Parse decodes the selected lines in order.
func Parse(lines []string) ([]Entry, error) {
	var out []Entry
	for i, line := range lines {
		e, ok, err := parseLine(i+1, line)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// ParseReader decodes solver output from r.
func ParseReader(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		n++
		e, ok, err := parseLine(n, sc.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read solver output: %w", err)
	}
	return out, nil
}

// ParseFile decodes the solver output stored at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func parseLine(n int, line string) (Entry, bool, error) {
	if !Selected(line) {
		return Entry{}, false, nil
	}
	malformed := func(err error) error {
		return &ImportError{Kind: MalformedLine, Line: n, Text: line, Err: err}
	}

	rest := line[strings.Index(line, "m_")+2:]
	xEnd := strings.IndexByte(rest, '_')
	if xEnd < 0 {
		return Entry{}, false, malformed(nil)
	}
	xs, rest := rest[:xEnd], rest[xEnd+1:]
	yEnd := strings.IndexByte(rest, '_')
	if yEnd < 0 {
		return Entry{}, false, malformed(nil)
	}
	ys, rest := rest[:yEnd], rest[yEnd+1:]
	tEnd := strings.IndexAny(rest, " \t")
	if tEnd < 0 {
		return Entry{}, false, malformed(nil)
	}
	ts := rest[:tEnd]

	x, err := parseUint(xs)
	if err != nil {
		return Entry{}, false, malformed(fmt.Errorf("x: %w", err))
	}
	y, err := parseUint(ys)
	if err != nil {
		return Entry{}, false, malformed(fmt.Errorf("y: %w", err))
	}
	t, err := parseUint(ts)
	if err != nil {
		return Entry{}, false, malformed(fmt.Errorf("type: %w", err))
	}
	return Entry{Type: t, X: x, Y: y}, true, nil
}

func parseUint(s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int](v)
}

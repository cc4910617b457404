package solverimport

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSelectsPlacements(t *testing.T) {
	input := "m_3_4_2 1\nnoise\nm_1_1_0 0\nm_5_5_1 1\n"
	entries, err := Parse(strings.Split(input, "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Entry{{Type: 2, X: 3, Y: 4}, {Type: 1, X: 5, Y: 5}}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(entries), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}

	fromReader, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	if len(fromReader) != 2 || fromReader[1] != want[1] {
		t.Fatalf("reader disagrees with Parse: %v", fromReader)
	}
}

func TestParseSolverNoise(t *testing.T) {
	lines := []string{
		"solution status: optimal solution found",
		"objective value: 53",
		"m_0_0_1                                             1   (obj:5)",
		"m_4_0_0 \t 1 \t(obj:1)",
		"# m_ without a value",
	}
	entries, err := Parse(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0] != (Entry{Type: 1}) || entries[1] != (Entry{Type: 0, X: 4}) {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"missing y", "m_3 1"},
		{"missing type separator", "m_3_4 1"},
		{"extra underscore", "x m_3_4_2_9"},
		{"negative", "m_-3_4_2 1"},
		{"not a number", "m_a_4_2 1"},
		{"empty type", "m_3_4_ 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]string{"noise", tc.line + " 1"})
			var ierr *ImportError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected ImportError, got %v", err)
			}
			if ierr.Kind != MalformedLine || ierr.Line != 2 {
				t.Fatalf("unexpected error: %+v", ierr)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.sol")
	if err := os.WriteFile(path, []byte("m_2_0_0 1\nm_2_1_0 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	entries, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[1].Y != 1 {
		t.Fatalf("unexpected entries: %v", entries)
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEntryString(t *testing.T) {
	if got := (Entry{Type: 7, X: 1, Y: 2}).String(); got != "m_1_2_7" {
		t.Fatalf("unexpected variable name %q", got)
	}
}

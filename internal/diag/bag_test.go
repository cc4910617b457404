package diag

import (
	"testing"

	"mulforge/internal/geom"
)

func cell(x, y int) geom.Rect {
	return geom.Rect{Min: geom.Coord{X: x, Y: y}, W: 1, H: 1}
}

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(3)
	r := BagReporter{Bag: b}
	ReportWarning(r, ResCostMismatch, cell(0, 0), "cost").Emit()
	ReportError(r, CovUncovered, cell(3, 2), "uncovered").Emit()
	ReportError(r, CovOverlap, cell(1, 0), "overlap").WithEntry(4).Emit()
	ReportError(r, CovOverlap, cell(2, 0), "dropped").Emit()

	if b.Len() != 3 {
		t.Fatalf("expected limit of 3, got %d", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected both errors and warnings")
	}
	b.Sort()
	want := "WARNING RES2002 1x1@(0,0): cost\n" +
		"ERROR COV1001 1x1@(1,0) entry 4: overlap\n" +
		"ERROR COV1002 1x1@(3,2): uncovered"
	if got := b.String(); got != want {
		t.Fatalf("unexpected rendering:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: b})
	for i := 0; i < 3; i++ {
		ReportError(r, CovOverlap, cell(1, 1), "overlap").Emit()
	}
	ReportError(r, CovOverlap, cell(1, 2), "overlap").Emit()
	if b.Count(CovOverlap) != 2 {
		t.Fatalf("expected 2 unique findings, got %d", b.Count(CovOverlap))
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		CovEmptyTile:   "COV1004",
		ResDSPBudget:   "RES2001",
		ImpUnknownType: "IMP3001",
		UnknownCode:    "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("%d: expected %s, got %s", code, want, got)
		}
	}
}

func TestSeverityRejects(t *testing.T) {
	if SevInfo.Rejects() || SevWarning.Rejects() || !SevError.Rejects() {
		t.Fatal("only errors should reject a solution")
	}

	b := NewBag(4)
	r := BagReporter{Bag: b}
	ReportWarning(r, ResCostMismatch, cell(0, 0), "cost").Emit()
	if b.HasErrors() {
		t.Fatal("a cost mismatch alone must not reject the solution")
	}
	ReportError(r, ResDSPBudget, cell(0, 0), "budget").Emit()
	if !b.HasErrors() {
		t.Fatal("a broken DSP budget must reject the solution")
	}
}

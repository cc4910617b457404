package exact

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/hashicorp/go-set/v3"

	"mulforge/internal/diag"
	"mulforge/internal/field"
	"mulforge/internal/geom"
	"mulforge/internal/solverimport"
	"mulforge/internal/tiling"
	"mulforge/internal/trace"
)

const maxImportFindings = 256

// Imported turns the entries of an external solver's solution into a
// Solution. Entries are placed through a private Field in input order; type
// indices refer to NewTable(p.Library).
type Imported struct {
	Entries []solverimport.Entry
}

// Name implements tiling.Strategy.
func (Imported) Name() string { return "import" }

// Solve implements tiling.Strategy. Unknown types, duplicate entries, anchors
// outside the grid, overlapping or empty tiles and any finding of tiling.Check
// make the import fail with an InvalidSolution error carrying the findings.
func (s Imported) Solve(ctx context.Context, p tiling.Problem) (tiling.Solution, error) {
	if err := p.Validate(); err != nil {
		return tiling.Solution{}, err
	}
	span, ctx := trace.Start(ctx, trace.ScopeSolve, s.Name())
	span.WithExtra("entries", strconv.Itoa(len(s.Entries)))

	sol, bag, err := s.place(ctx, p)
	if err != nil {
		span.End(err.Error())
		return tiling.Solution{}, err
	}
	bag.Merge(tiling.Check(sol, p))
	if bag.HasErrors() {
		bag.Sort()
		err := &tiling.TilingError{Kind: tiling.InvalidSolution, Strategy: s.Name(), Findings: bag}
		span.End(err.Error())
		return tiling.Solution{}, err
	}
	span.End(fmt.Sprintf("cost %g", sol.Cost))
	return sol, nil
}

func (s Imported) place(ctx context.Context, p tiling.Problem) (tiling.Solution, *diag.Bag, error) {
	g := p.Grid
	table := NewTable(p.Library)
	f := field.New(g, p.Signed)
	bag := diag.NewBag(maxImportFindings)
	r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	seen := set.New[solverimport.Entry](len(s.Entries))

	var sol tiling.Solution
	for i, e := range s.Entries {
		if err := ctx.Err(); err != nil {
			return tiling.Solution{}, nil, err
		}
		at := geom.Coord{X: e.X, Y: e.Y}
		cell := geom.Rect{Min: at, W: 1, H: 1}
		if !seen.Insert(e) {
			diag.ReportError(r, diag.ImpDuplicate, cell, fmt.Sprintf("%s is listed twice", e)).WithEntry(i).Emit()
			continue
		}
		if e.Type >= table.Len() {
			diag.ReportError(r, diag.ImpUnknownType, cell,
				fmt.Sprintf("%s: type %d is not one of the %d tile types", e, e.Type, table.Len())).WithEntry(i).Emit()
			continue
		}
		if !g.Contains(at) {
			diag.ReportError(r, diag.CovOutOfGrid, cell,
				fmt.Sprintf("%s: anchor is outside the %s grid", e, g)).WithEntry(i).Emit()
			continue
		}
		param := table.Place(e.Type, at, g, p.Signed)
		if f.CheckPlacement(at, param) == 0 {
			code, msg := diag.CovOverlap, "overlaps an earlier entry"
			if len(param.CoveredCells(at, g, p.Signed)) == 0 {
				code, msg = diag.CovEmptyTile, "covers no cell"
			}
			diag.ReportError(r, code, param.Footprint(at), fmt.Sprintf("%s %s", e, msg)).WithEntry(i).Emit()
			continue
		}
		f.Commit(at, param)
		sol.Entries = append(sol.Entries, tiling.Placement{Param: param, Anchor: at})
		sol.Cost += param.Cost()
	}
	return sol, bag, nil
}

// WriteAssignment writes sol as SolutionImport lines, one "m_<x>_<y>_<type> 1"
// line per entry.
func WriteAssignment(w io.Writer, sol tiling.Solution, t *Table) error {
	bw := bufio.NewWriter(w)
	for i, e := range sol.Entries {
		ti, ok := t.Index(e.Param)
		if !ok {
			return fmt.Errorf("entry %d: %s is not in the type table", i, e.Param)
		}
		entry := solverimport.Entry{Type: ti, X: e.Anchor.X, Y: e.Anchor.Y}
		if _, err := fmt.Fprintf(bw, "%s 1\n", entry); err != nil {
			return err
		}
	}
	return bw.Flush()
}

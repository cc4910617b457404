package tiling

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-set/v3"

	"mulforge/internal/diag"
	"mulforge/internal/geom"
)

// maxFindings bounds the bag returned by Check.
const maxFindings = 256

const costTolerance = 1e-9

// Check validates sol against p: no two entries share a cell, every cell is
// covered, every entry covers at least one cell, the DSP budget holds and the
// recorded cost matches the entries. Findings are returned in a bag; a bag
// without errors means the solution is usable.
func Check(sol Solution, p Problem) *diag.Bag {
	bag := diag.NewBag(maxFindings)
	r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	g := p.Grid
	cell := func(c geom.Coord) geom.Rect { return geom.Rect{Min: c, W: 1, H: 1} }

	owner := make(map[geom.Coord]int, g.Cells())
	covered := set.New[geom.Coord](g.Cells())
	for i, e := range sol.Entries {
		if !e.Param.Valid() {
			diag.ReportError(r, diag.CovEmptyTile, e.Footprint(), "entry has no shape").WithEntry(i).Emit()
			continue
		}
		if !g.Contains(e.Anchor) {
			diag.ReportError(r, diag.CovOutOfGrid, e.Footprint(),
				fmt.Sprintf("anchor %s is outside the %s grid", e.Anchor, g)).WithEntry(i).Emit()
		}
		cells := e.Param.CoveredCells(e.Anchor, g, p.Signed)
		if len(cells) == 0 {
			diag.ReportError(r, diag.CovEmptyTile, e.Footprint(),
				fmt.Sprintf("%s covers no cell", e.Param)).WithEntry(i).Emit()
			continue
		}
		for _, c := range cells {
			if !covered.Insert(c) {
				diag.ReportError(r, diag.CovOverlap, cell(c),
					fmt.Sprintf("cell is covered by entries %d and %d", owner[c], i)).
					WithEntry(i).
					WithNote(sol.Entries[owner[c]].Footprint(), "first covered here").
					Emit()
				continue
			}
			owner[c] = i
		}
	}

	if covered.Size() != g.Cells() {
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				c := geom.Coord{X: x, Y: y}
				if !covered.Contains(c) {
					diag.ReportError(r, diag.CovUncovered, cell(c), "cell is not covered").Emit()
				}
			}
		}
	}

	if n := sol.DSPCount(); !p.DSPAllowed(n) {
		diag.ReportError(r, diag.ResDSPBudget, g.Bounds(),
			fmt.Sprintf("solution uses %d DSP blocks, budget is %d", n, p.DSPBudget)).Emit()
	}
	if sum := sol.EntryCost(); !sol.Failed() && math.Abs(sum-sol.Cost) > costTolerance {
		diag.ReportWarning(r, diag.ResCostMismatch, g.Bounds(),
			fmt.Sprintf("recorded cost %g, entries sum to %g", sol.Cost, sum)).Emit()
	}
	if p.Bounded() && sol.Cost > p.CostBound {
		diag.ReportWarning(r, diag.ResCostBound, g.Bounds(),
			fmt.Sprintf("cost %g exceeds bound %g", sol.Cost, p.CostBound)).Emit()
	}
	return bag
}

// Validate runs Check and turns error findings into an InvalidSolution error.
func Validate(strategy string, sol Solution, p Problem) error {
	bag := Check(sol, p)
	if !bag.HasErrors() {
		return nil
	}
	bag.Sort()
	return &TilingError{Kind: InvalidSolution, Strategy: strategy, Findings: bag}
}

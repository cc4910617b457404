package exact

import (
	"errors"
	"fmt"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

// DefaultMaxCandidates bounds the SAT model.
const DefaultMaxCandidates = 4096

// ErrModelTooLarge is returned when a problem needs more candidates or cost
// units than an exact model accepts.
var ErrModelTooLarge = errors.New("exact: model too large")

// Candidate is one tile type at one anchor.
type Candidate struct {
	Type   int
	Anchor geom.Coord
	Param  tile.Parametrization
	Cells  []int // row-major indices of the covered cells
}

// Enumerate lists every candidate of p in type, row, column order. Tile kinds
// disabled by the problem are skipped, DSP-bearing types are skipped when no
// single one fits the budget, and DSP candidates below the occupation
// threshold are dropped. limit <= 0 disables the size check.
func Enumerate(p tiling.Problem, t *Table, limit int) ([]Candidate, error) {
	g, signed := p.Grid, p.Signed
	var out []Candidate
	for ti := 0; ti < t.Len(); ti++ {
		nominal := t.Type(ti)
		s := nominal.Shape()
		switch s.Kind() {
		case tile.KindVarLen:
			if !p.VariableLength {
				continue
			}
		case tile.KindSuper:
			if !p.SuperTiles {
				continue
			}
		}
		if s.DSPCount() > 0 && !p.DSPAllowed(s.DSPCount()) {
			continue
		}
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				at := geom.Coord{X: x, Y: y}
				if s.Kind() == tile.KindVarLen && overflows(nominal, at, g) {
					continue
				}
				param := t.Place(ti, at, g, signed)
				cells := param.CoveredCells(at, g, signed)
				if len(cells) == 0 {
					continue
				}
				if s.DSPCount() > 0 && float64(len(cells))/float64(param.Area()) < p.OccupationThreshold {
					continue
				}
				idx := make([]int, len(cells))
				for i, c := range cells {
					idx[i] = g.Index(c)
				}
				out = append(out, Candidate{Type: ti, Anchor: at, Param: param, Cells: idx})
				if limit > 0 && len(out) > limit {
					return nil, fmt.Errorf("%w: more than %d candidates for %s", ErrModelTooLarge, limit, g)
				}
			}
		}
	}
	return out, nil
}

// overflows reports whether the varying side of a variable-length tile runs
// past the grid. The shorter lengths of the same shape cover those anchors.
func overflows(p tile.Parametrization, at geom.Coord, g geom.Grid) bool {
	if p.Shape().Orientation() == tile.Horizontal {
		return at.X+p.Width() > g.W
	}
	return at.Y+p.Height() > g.H
}

// byCell groups candidate indices by covered cell.
func byCell(cands []Candidate, cells int) [][]int {
	out := make([][]int, cells)
	for i, c := range cands {
		for _, cell := range c.Cells {
			out[cell] = append(out[cell], i)
		}
	}
	return out
}

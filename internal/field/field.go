// Package field implements the placement grid of the tiling search.
//
// A Field owns a wX x wY array of owner ids. Id 0 is the base id (unclaimed);
// every committed placement stamps its cells with a fresh id drawn from a
// monotonically increasing epoch counter, so ownership is a plain equality
// test. CheckPlacement only reads the array; Commit is the single mutating
// operation. A Field is not safe for concurrent use: every solve owns one.
package field

import (
	"mulforge/internal/geom"
	"mulforge/internal/tile"
)

// BaseID marks an unclaimed cell.
const BaseID uint32 = 0

// State is the (epoch id, scan cursor) pair of one placement attempt. It is a
// plain value: taking one never touches the grid.
type State struct {
	ID     uint32     // id the next commit stamps
	Cursor geom.Coord // first free cell in row-major order
}

// Field is the owner-id grid of one solve.
type Field struct {
	grid    geom.Grid
	signed  geom.Signedness
	owners  []uint32
	epoch   uint32
	cursor  geom.Coord
	missing int
}

// New creates a field with every cell unclaimed.
func New(g geom.Grid, signed geom.Signedness) *Field {
	f := &Field{
		grid:   g,
		signed: signed,
		owners: make([]uint32, g.Cells()),
	}
	f.Reset()
	return f
}

// Grid returns the field dimensions.
func (f *Field) Grid() geom.Grid { return f.grid }

// Signed returns the operand signedness the field was created for.
func (f *Field) Signed() geom.Signedness { return f.signed }

// Reset reinitializes every cell to the base id and rewinds the epoch counter
// and cursor.
func (f *Field) Reset() {
	for i := range f.owners {
		f.owners[i] = BaseID
	}
	f.epoch = 0
	f.cursor = geom.Coord{}
	f.missing = f.grid.Cells()
	if f.missing == 0 {
		f.cursor = geom.Coord{X: 0, Y: max(f.grid.H, 0)}
	}
}

// State returns the speculative state of the next placement attempt.
func (f *Field) State() State {
	return State{ID: f.epoch + 1, Cursor: f.cursor}
}

// Missing returns the number of unclaimed cells.
func (f *Field) Missing() int { return f.missing }

// Epoch returns the last id issued, 0 before the first commit.
func (f *Field) Epoch() uint32 { return f.epoch }

// Owner returns the id owning c, or BaseID for cells outside the grid.
func (f *Field) Owner(c geom.Coord) uint32 {
	if !f.grid.Contains(c) {
		return BaseID
	}
	return f.owners[f.grid.Index(c)]
}

// Free reports whether c is an unclaimed cell of the grid.
func (f *Field) Free(c geom.Coord) bool {
	return f.grid.Contains(c) && f.owners[f.grid.Index(c)] == BaseID
}

// CheckPlacement counts the free cells p would cover when anchored at at. It
// returns 0 as soon as one selected cell already belongs to a committed
// placement: partial overlap is never allowed. The field is not modified.
func (f *Field) CheckPlacement(at geom.Coord, p tile.Parametrization) int {
	covered := 0
	x0, y0 := max(at.X, 0), max(at.Y, 0)
	x1, y1 := min(at.X+p.Width(), f.grid.W), min(at.Y+p.Height(), f.grid.H)
	for y := y0; y < y1; y++ {
		row := y * f.grid.W
		for x := x0; x < x1; x++ {
			c := geom.Coord{X: x, Y: y}
			if !p.Covers(c, at, f.grid, f.signed) {
				continue
			}
			if f.owners[row+x] != BaseID {
				return 0
			}
			covered++
		}
	}
	return covered
}

// Commit stamps every free cell p covers at at with a fresh epoch id,
// decreases the missing count and advances the cursor to the next free cell
// in row-major order. It returns the new state. Callers commit only
// candidates that CheckPlacement accepted.
func (f *Field) Commit(at geom.Coord, p tile.Parametrization) State {
	f.epoch++
	id := f.epoch
	x0, y0 := max(at.X, 0), max(at.Y, 0)
	x1, y1 := min(at.X+p.Width(), f.grid.W), min(at.Y+p.Height(), f.grid.H)
	for y := y0; y < y1; y++ {
		row := y * f.grid.W
		for x := x0; x < x1; x++ {
			if f.owners[row+x] != BaseID {
				continue
			}
			if !p.Covers(geom.Coord{X: x, Y: y}, at, f.grid, f.signed) {
				continue
			}
			f.owners[row+x] = id
			f.missing--
		}
	}
	f.advance()
	return State{ID: f.epoch + 1, Cursor: f.cursor}
}

// advance moves the cursor to the next free cell: rest of the current row
// left to right, then the following rows. Cells before the cursor are owned,
// so the scan never looks back.
func (f *Field) advance() {
	for y := f.cursor.Y; y < f.grid.H; y++ {
		x := 0
		if y == f.cursor.Y {
			x = f.cursor.X
		}
		for ; x < f.grid.W; x++ {
			if f.owners[y*f.grid.W+x] == BaseID {
				f.cursor = geom.Coord{X: x, Y: y}
				return
			}
		}
	}
	f.cursor = geom.Coord{X: 0, Y: f.grid.H}
}

// FreeRunRight counts the contiguous free cells starting at c and going right.
func (f *Field) FreeRunRight(c geom.Coord) int {
	n := 0
	for x := c.X; x < f.grid.W; x++ {
		if !f.Free(geom.Coord{X: x, Y: c.Y}) {
			break
		}
		n++
	}
	return n
}

// FreeRunDown counts the contiguous free cells starting at c and going to
// higher rows.
func (f *Field) FreeRunDown(c geom.Coord) int {
	n := 0
	for y := c.Y; y < f.grid.H; y++ {
		if !f.Free(geom.Coord{X: c.X, Y: y}) {
			break
		}
		n++
	}
	return n
}

// Snapshot returns a copy of the owner array in row-major order.
func (f *Field) Snapshot() []uint32 {
	out := make([]uint32, len(f.owners))
	copy(out, f.owners)
	return out
}

// DistinctOwners counts the distinct ids present in the grid, base id included
// when some cell is still free.
func (f *Field) DistinctOwners() int {
	seen := make(map[uint32]struct{}, int(f.epoch)+1)
	for _, id := range f.owners {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// Covered returns the number of claimed cells.
func (f *Field) Covered() int {
	return f.grid.Cells() - f.missing
}

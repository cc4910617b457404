// Package geom holds the small value types shared by the tiling packages:
// grid coordinates, rectangles, grid dimensions and operand signedness.
package geom

import "fmt"

// Coord indexes a cell of the partial-product grid. X runs along the first
// operand (columns), Y along the second (rows).
type Coord struct {
	X int
	Y int
}

// Weight returns the bit weight of the cell, x+y.
func (c Coord) Weight() int {
	return c.X + c.Y
}

// Add returns c translated by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub returns the offset from d to c.
func (c Coord) Sub(d Coord) Coord {
	return Coord{X: c.X - d.X, Y: c.Y - d.Y}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Rect is a half-open rectangle [Min.X, Min.X+W) x [Min.Y, Min.Y+H).
type Rect struct {
	Min Coord
	W   int
	H   int
}

// Contains reports whether c lies inside r.
func (r Rect) Contains(c Coord) bool {
	return c.X >= r.Min.X && c.X < r.Min.X+r.W && c.Y >= r.Min.Y && c.Y < r.Min.Y+r.H
}

// Max returns the exclusive upper corner of r.
func (r Rect) Max() Coord {
	return Coord{X: r.Min.X + r.W, Y: r.Min.Y + r.H}
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Translate returns r moved by d.
func (r Rect) Translate(d Coord) Rect {
	return Rect{Min: r.Min.Add(d), W: r.W, H: r.H}
}

// Union returns the bounding box of r and o.
func (r Rect) Union(o Rect) Rect {
	minX, minY := min(r.Min.X, o.Min.X), min(r.Min.Y, o.Min.Y)
	maxX, maxY := max(r.Max().X, o.Max().X), max(r.Max().Y, o.Max().Y)
	return Rect{Min: Coord{X: minX, Y: minY}, W: maxX - minX, H: maxY - minY}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%s", r.W, r.H, r.Min)
}

// Grid is the wX x wY partial-product grid.
type Grid struct {
	W int
	H int
}

// Contains reports whether c is a cell of the grid.
func (g Grid) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.W && c.Y >= 0 && c.Y < g.H
}

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int {
	if g.W <= 0 || g.H <= 0 {
		return 0
	}
	return g.W * g.H
}

// Index returns the row-major index of c. The caller guarantees c is in the grid.
func (g Grid) Index(c Coord) int {
	return c.Y*g.W + c.X
}

// At is the inverse of Index.
func (g Grid) At(idx int) Coord {
	return Coord{X: idx % g.W, Y: idx / g.W}
}

// Bounds returns the grid as a rectangle anchored at the origin.
func (g Grid) Bounds() Rect {
	return Rect{W: g.W, H: g.H}
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.W, g.H)
}

// Signedness flags the operands of the multiplier as two's complement.
type Signedness struct {
	X bool
	Y bool
}

// Any reports whether at least one operand is signed.
func (s Signedness) Any() bool {
	return s.X || s.Y
}

func (s Signedness) String() string {
	switch {
	case s.X && s.Y:
		return "signed"
	case s.X:
		return "signed-x"
	case s.Y:
		return "signed-y"
	default:
		return "unsigned"
	}
}

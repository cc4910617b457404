package tile

import (
	"fmt"

	"mulforge/internal/geom"
)

// Parametrization is a Shape instantiated at a concrete footprint and
// signedness, possibly clipped or expanded at the grid boundary.
type Parametrization struct {
	shape    *Shape
	width    int
	height   int
	length   int // k of a variable-length tile
	signedX  bool
	signedY  bool
	clipped  bool
	expanded bool
}

// Shape returns the shape this parametrization instantiates.
func (p Parametrization) Shape() *Shape { return p.shape }

// Valid reports whether p refers to a shape at all.
func (p Parametrization) Valid() bool { return p.shape != nil }

// Width returns the effective footprint width.
func (p Parametrization) Width() int { return p.width }

// Height returns the effective footprint height.
func (p Parametrization) Height() int { return p.height }

// Length returns k for variable-length tiles.
func (p Parametrization) Length() int { return p.length }

// Signed returns the operand signedness the tile was instantiated with.
func (p Parametrization) Signed() geom.Signedness {
	return geom.Signedness{X: p.signedX, Y: p.signedY}
}

// Clipped reports whether the grid boundary cut the footprint.
func (p Parametrization) Clipped() bool { return p.clipped }

// Expanded reports whether the footprint grew to absorb a sign bit.
func (p Parametrization) Expanded() bool { return p.expanded }

// Footprint returns the effective bounding rectangle when anchored at anchor.
func (p Parametrization) Footprint(anchor geom.Coord) geom.Rect {
	return geom.Rect{Min: anchor, W: p.width, H: p.height}
}

// Area returns the nominal number of useful cells, the denominator of the
// occupation ratio.
func (p Parametrization) Area() int {
	if p.shape == nil {
		return 0
	}
	if p.shape.kind == KindVarLen {
		return 2 * p.length
	}
	return p.shape.area
}

// Cost returns the resource cost of this instance.
func (p Parametrization) Cost() float64 {
	if p.shape == nil {
		return 0
	}
	if p.shape.kind == KindVarLen {
		return VarLenCost(p.length)
	}
	return p.shape.cost
}

// Efficiency is Area/Cost of this instance.
func (p Parametrization) Efficiency() float64 {
	c := p.Cost()
	if c <= 0 {
		return 0
	}
	return float64(p.Area()) / c
}

// DSPCount returns the DSP blocks consumed by this instance.
func (p Parametrization) DSPCount() int {
	if p.shape == nil {
		return 0
	}
	return p.shape.dsps
}

// OutputBits returns the width of the numeric result this instance produces.
func (p Parametrization) OutputBits() int {
	bits := ProductBits(p.width, p.height)
	if p.shape != nil && p.shape.kind == KindSuper {
		// two products added at an offset need one extra carry bit
		bits++
	}
	return bits
}

// Covers reports whether the tile anchored at anchor produces a partial
// product at cell. Cells outside the grid are never covered, and a shape
// that cannot take a signed operand leaves that operand's MSB edge alone.
func (p Parametrization) Covers(cell, anchor geom.Coord, g geom.Grid, signed geom.Signedness) bool {
	if p.shape == nil || !g.Contains(cell) {
		return false
	}
	local := cell.Sub(anchor)
	if local.X < 0 || local.Y < 0 || local.X >= p.width || local.Y >= p.height {
		return false
	}
	if signed.X && cell.X == g.W-1 && !p.shape.signedX {
		return false
	}
	if signed.Y && cell.Y == g.H-1 && !p.shape.signedY {
		return false
	}
	switch p.shape.kind {
	case KindLUT:
		if p.shape.mask == nil {
			return true
		}
		if local.Y >= len(p.shape.mask) || local.X >= len(p.shape.mask[local.Y]) {
			return false
		}
		return p.shape.mask[local.Y][local.X]
	case KindSuper:
		for _, part := range p.shape.parts {
			if part.Contains(local) {
				return true
			}
		}
		return false
	case KindDSP, KindVarLen:
		return true
	default:
		return false
	}
}

// CoveredCells lists the grid cells p covers when anchored at anchor, in
// row-major order.
func (p Parametrization) CoveredCells(anchor geom.Coord, g geom.Grid, signed geom.Signedness) []geom.Coord {
	var cells []geom.Coord
	for y := anchor.Y; y < anchor.Y+p.height; y++ {
		for x := anchor.X; x < anchor.X+p.width; x++ {
			c := geom.Coord{X: x, Y: y}
			if p.Covers(c, anchor, g, signed) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

func (p Parametrization) String() string {
	if p.shape == nil {
		return "<none>"
	}
	s := fmt.Sprintf("%s %dx%d", p.shape.name, p.width, p.height)
	if p.signedX || p.signedY {
		s += " " + p.Signed().String()
	}
	if p.expanded {
		s += " expanded"
	}
	if p.clipped {
		s += " clipped"
	}
	return s
}

// Restore rebuilds a parametrization from stored fields, as written by a
// solution cache. The footprint is taken as given.
func Restore(s *Shape, width, height, length int, signed geom.Signedness, clipped, expanded bool) Parametrization {
	return Parametrization{
		shape:    s,
		width:    width,
		height:   height,
		length:   length,
		signedX:  signed.X,
		signedY:  signed.Y,
		clipped:  clipped,
		expanded: expanded,
	}
}

// Package tile describes the primitive multiplier shapes that can be placed on
// the partial-product grid.
//
// A Shape is a tagged variant over Kind; every capability (area, cost,
// efficiency, parametrization, boundary expansion, coverage) switches on the
// tag, so adding a Kind means visiting every switch in this package and nowhere
// else. Shapes are immutable after construction and safe to share between
// concurrent solves.
package tile

import (
	"fmt"

	"mulforge/internal/geom"
)

// Shape is one placeable primitive and its cost characteristics.
type Shape struct {
	name string
	kind Kind

	width  int // nominal; Unbounded on the varying side of KindVarLen
	height int

	orient Orientation // KindVarLen only
	minLen int
	maxLen int

	signedX    bool // can take a two's complement X operand
	signedY    bool
	signExtend bool // may grow by one cell to absorb a sign bit

	dsps int
	cost float64
	area int

	mask  [][]bool    // KindLUT, nil means rectangular
	parts []geom.Rect // KindSuper components, relative to the bounding box
}

// NewDSP creates a hard multiplier block of w x h unsigned bits. DSP blocks
// accept signed operands and, when signExtend is set, take one extra bit per
// signed operand at the grid boundary.
func NewDSP(name string, w, h int, cost float64, signExtend bool) *Shape {
	return &Shape{
		name:       name,
		kind:       KindDSP,
		width:      w,
		height:     h,
		signedX:    true,
		signedY:    true,
		signExtend: signExtend,
		dsps:       1,
		cost:       cost,
		area:       max(w, 0) * max(h, 0),
	}
}

// NewLUT creates a rectangular LUT multiplier. A non-positive cost selects the
// LUTCost estimate for lutInputs.
func NewLUT(name string, w, h int, cost float64, signed bool, lutInputs int) *Shape {
	if cost <= 0 {
		cost = LUTCost(w, h, lutInputs)
	}
	return &Shape{
		name:    name,
		kind:    KindLUT,
		width:   w,
		height:  h,
		signedX: signed,
		signedY: signed,
		cost:    cost,
		area:    max(w, 0) * max(h, 0),
	}
}

// NewMaskedLUT creates a LUT multiplier with an irregular footprint. Rows are
// listed from y=0 upwards; 'x' or '#' marks a covered cell, '.' an excluded one.
func NewMaskedLUT(name string, rows []string, cost float64, signed bool) (*Shape, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("lut %q: empty mask", name)
	}
	w := len(rows[0])
	mask := make([][]bool, len(rows))
	area := 0
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("lut %q: mask row %d has width %d, want %d", name, y, len(row), w)
		}
		mask[y] = make([]bool, w)
		for x, ch := range row {
			switch ch {
			case 'x', 'X', '#':
				mask[y][x] = true
				area++
			case '.', ' ':
			default:
				return nil, fmt.Errorf("lut %q: invalid mask character %q at (%d,%d)", name, ch, x, y)
			}
		}
	}
	if area == 0 {
		return nil, fmt.Errorf("lut %q: mask covers no cells", name)
	}
	if cost <= 0 {
		return nil, fmt.Errorf("lut %q: irregular shapes need an explicit cost", name)
	}
	return &Shape{
		name:    name,
		kind:    KindLUT,
		width:   w,
		height:  len(rows),
		signedX: signed,
		signedY: signed,
		cost:    cost,
		area:    area,
		mask:    mask,
	}, nil
}

// NewVarLen creates a variable-length 2xk (Vertical) or kx2 (Horizontal)
// multiplier usable for k in [minLen, maxLen]. These carry-chain multipliers
// are unsigned only.
func NewVarLen(name string, orient Orientation, minLen, maxLen int) *Shape {
	s := &Shape{
		name:   name,
		kind:   KindVarLen,
		orient: orient,
		minLen: minLen,
		maxLen: maxLen,
		cost:   VarLenCost(maxLen),
		area:   2 * max(maxLen, 0),
	}
	if orient == Horizontal {
		s.width, s.height = Unbounded, 2
	} else {
		s.width, s.height = 2, Unbounded
	}
	return s
}

// NewSuper creates a supertile made of two DSP footprints a and b, given
// relative to the supertile anchor.
func NewSuper(name string, a, b geom.Rect, cost float64) (*Shape, error) {
	if a.Empty() || b.Empty() {
		return nil, fmt.Errorf("supertile %q: empty component", name)
	}
	box := a.Union(b)
	if box.Min != (geom.Coord{}) {
		return nil, fmt.Errorf("supertile %q: components must touch the origin, bounding box starts at %s", name, box.Min)
	}
	for y := 0; y < box.H; y++ {
		for x := 0; x < box.W; x++ {
			c := geom.Coord{X: x, Y: y}
			if a.Contains(c) && b.Contains(c) {
				return nil, fmt.Errorf("supertile %q: components overlap at %s", name, c)
			}
		}
	}
	return &Shape{
		name:    name,
		kind:    KindSuper,
		width:   box.W,
		height:  box.H,
		signedX: true,
		signedY: true,
		dsps:    2,
		cost:    cost,
		area:    a.W*a.H + b.W*b.H,
		parts:   []geom.Rect{a, b},
	}, nil
}

// Name returns the shape's unique library name.
func (s *Shape) Name() string { return s.name }

// Kind returns the variant tag.
func (s *Shape) Kind() Kind { return s.kind }

// Width returns the nominal width, Unbounded for the varying side of a kx2 tile.
func (s *Shape) Width() int { return s.width }

// Height returns the nominal height, Unbounded for the varying side of a 2xk tile.
func (s *Shape) Height() int { return s.height }

// Orientation returns the varying side of a variable-length shape.
func (s *Shape) Orientation() Orientation { return s.orient }

// LenRange returns the admissible k of a variable-length shape.
func (s *Shape) LenRange() (int, int) { return s.minLen, s.maxLen }

// SignedCapable reports whether the shape accepts a signed operand on each axis.
func (s *Shape) SignedCapable() geom.Signedness {
	return geom.Signedness{X: s.signedX, Y: s.signedY}
}

// SignExtends reports whether the shape may grow to absorb a sign bit.
func (s *Shape) SignExtends() bool { return s.signExtend }

// DSPCount returns the number of DSP blocks the shape consumes.
func (s *Shape) DSPCount() int { return s.dsps }

// Parts returns the supertile components relative to the anchor.
func (s *Shape) Parts() []geom.Rect {
	out := make([]geom.Rect, len(s.parts))
	copy(out, s.parts)
	return out
}

// Mask returns the rows of an irregular LUT, 'x' for a covered cell, or nil
// for a rectangular shape.
func (s *Shape) Mask() []string {
	if s.mask == nil {
		return nil
	}
	out := make([]string, len(s.mask))
	for y, row := range s.mask {
		b := make([]byte, len(row))
		for x, on := range row {
			b[x] = '.'
			if on {
				b[x] = 'x'
			}
		}
		out[y] = string(b)
	}
	return out
}

// Area returns the number of cells the nominal footprint produces. For a
// variable-length shape this is the footprint at its longest k.
func (s *Shape) Area() int { return s.area }

// Cost returns the estimated resource cost, for variable-length shapes at the longest k.
func (s *Shape) Cost() float64 { return s.cost }

// Efficiency is useful bits per unit of cost, the primary ranking key.
func (s *Shape) Efficiency() float64 {
	if s.cost <= 0 {
		return 0
	}
	return float64(s.area) / s.cost
}

// CostAt returns the cost of the variable-length shape at length k, or the
// fixed cost for every other kind.
func (s *Shape) CostAt(k int) float64 {
	if s.kind == KindVarLen {
		return VarLenCost(k)
	}
	return s.cost
}

func (s *Shape) String() string {
	switch s.kind {
	case KindVarLen:
		return fmt.Sprintf("%s[%s %d..%d]", s.name, s.orient, s.minLen, s.maxLen)
	default:
		return fmt.Sprintf("%s[%s %dx%d]", s.name, s.kind, s.width, s.height)
	}
}

// Parametrize instantiates a variable-length shape at width x height. Fixed
// shapes ignore the dimensions and return their nominal parametrization.
// Signed operands are rejected for shapes that cannot take them.
func (s *Shape) Parametrize(width, height int, signedX, signedY bool) (Parametrization, error) {
	if (signedX && !s.signedX) || (signedY && !s.signedY) {
		return Parametrization{}, fmt.Errorf("%s: signed operand not supported", s.name)
	}
	switch s.kind {
	case KindVarLen:
		k := height
		if s.orient == Horizontal {
			k = width
		}
		if k < s.minLen || k > s.maxLen {
			return Parametrization{}, fmt.Errorf("%s: length %d outside [%d, %d]", s.name, k, s.minLen, s.maxLen)
		}
		p := Parametrization{shape: s, length: k, signedX: signedX, signedY: signedY}
		if s.orient == Horizontal {
			p.width, p.height = k, 2
		} else {
			p.width, p.height = 2, k
		}
		return p, nil
	case KindDSP, KindLUT, KindSuper:
		return Parametrization{shape: s, width: s.width, height: s.height, signedX: signedX, signedY: signedY}, nil
	default:
		return Parametrization{}, fmt.Errorf("%s: unknown kind %v", s.name, s.kind)
	}
}

// TryDSPExpand fits the nominal footprint anchored at anchor to the grid. A
// sign-extending shape whose footprint stops exactly one cell short of a signed
// MSB column or row grows by that cell; a footprint reaching a signed MSB marks
// the operand signed; anything past the grid is clipped. The cost never changes.
// The result may cover no grid cells at all; callers find out through Covers.
func (s *Shape) TryDSPExpand(anchor geom.Coord, g geom.Grid, signed geom.Signedness) Parametrization {
	w, h := s.width, s.height
	if s.kind == KindVarLen {
		w, h = 2, 2
		if s.orient == Horizontal {
			w = s.maxLen
		} else {
			h = s.maxLen
		}
	}
	p := Parametrization{shape: s, length: max(w, h)}
	if s.signExtend {
		if signed.X && anchor.X+w == g.W-1 {
			w++
			p.expanded = true
		}
		if signed.Y && anchor.Y+h == g.H-1 {
			h++
			p.expanded = true
		}
	}
	if signed.X && s.signedX && anchor.X+w >= g.W {
		p.signedX = true
	}
	if signed.Y && s.signedY && anchor.Y+h >= g.H {
		p.signedY = true
	}
	if anchor.X+w > g.W {
		w = g.W - anchor.X
		p.clipped = true
	}
	if anchor.Y+h > g.H {
		h = g.H - anchor.Y
		p.clipped = true
	}
	p.width, p.height = max(w, 0), max(h, 0)
	if s.kind == KindVarLen {
		if s.orient == Horizontal {
			p.length = p.width
		} else {
			p.length = p.height
		}
	}
	return p
}

package exact

import (
	"mulforge/internal/geom"
	"mulforge/internal/tile"
)

type typeKey struct {
	shape  *tile.Shape
	length int
}

// Table indexes the placeable tile types of a library: fixed shapes in
// library order, one type per length of every variable-length shape, and the
// supertiles.
type Table struct {
	types []tile.Parametrization
	index map[typeKey]int
}

// NewTable builds the type table of lib.
func NewTable(lib *tile.Library) *Table {
	t := &Table{index: make(map[typeKey]int)}
	for _, s := range lib.Types() {
		if s.Kind() != tile.KindVarLen {
			if p, err := s.Parametrize(0, 0, false, false); err == nil {
				t.add(p, typeKey{shape: s})
			}
			continue
		}
		lo, hi := s.LenRange()
		for k := lo; k <= hi; k++ {
			w, h := 2, k
			if s.Orientation() == tile.Horizontal {
				w, h = k, 2
			}
			if p, err := s.Parametrize(w, h, false, false); err == nil {
				t.add(p, typeKey{shape: s, length: k})
			}
		}
	}
	return t
}

func (t *Table) add(p tile.Parametrization, key typeKey) {
	t.index[key] = len(t.types)
	t.types = append(t.types, p)
}

// Len returns the number of types.
func (t *Table) Len() int { return len(t.types) }

// Type returns the nominal parametrization of type i.
func (t *Table) Type(i int) tile.Parametrization { return t.types[i] }

// Index returns the type of a placed parametrization.
func (t *Table) Index(p tile.Parametrization) (int, bool) {
	s := p.Shape()
	if s == nil {
		return 0, false
	}
	key := typeKey{shape: s}
	if s.Kind() == tile.KindVarLen {
		key.length = p.Length()
	}
	i, ok := t.index[key]
	return i, ok
}

// Place instantiates type i at anchor. Fixed tiles are fitted to the grid
// boundary; variable-length tiles keep their length and supertiles their
// geometry, marked signed where they reach a signed MSB.
func (t *Table) Place(i int, anchor geom.Coord, g geom.Grid, signed geom.Signedness) tile.Parametrization {
	p := t.types[i]
	s := p.Shape()
	switch s.Kind() {
	case tile.KindDSP, tile.KindLUT:
		return s.TryDSPExpand(anchor, g, signed)
	case tile.KindSuper:
		capable := s.SignedCapable()
		sx := signed.X && capable.X && anchor.X+p.Width() >= g.W
		sy := signed.Y && capable.Y && anchor.Y+p.Height() >= g.H
		if sp, err := s.Parametrize(0, 0, sx, sy); err == nil {
			return sp
		}
		return p
	default:
		return p
	}
}

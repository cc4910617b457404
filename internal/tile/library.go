package tile

import (
	"errors"
	"fmt"
	"sort"

	"mulforge/internal/geom"
)

// FallbackName is the name of the 1x1 LUT tile every library carries.
const FallbackName = "lut1x1"

// ErrDuplicateShape is returned when two shapes share a name.
var ErrDuplicateShape = errors.New("duplicate shape name")

// Library is the set of shapes available to a solve, partitioned ahead of time
// the way the greedy search consumes them.
type Library struct {
	general    []*Shape // fixed shapes, best first
	vertical   []Parametrization
	horizontal []Parametrization
	varShapes  []*Shape
	supers     []*Shape
	fallback   *Shape
	types      []*Shape
	byName     map[string]*Shape
}

// NewLibrary partitions shapes into the general pool, the variable-length
// pools and the supertile list. A 1x1 LUT named FallbackName is added when the
// shapes do not contain one, so that every free cell can always be covered.
func NewLibrary(shapes ...*Shape) (*Library, error) {
	return newLibrary(true, shapes)
}

// NewStrictLibrary is NewLibrary without the implicit fallback tile. A solve
// over a strict library may fail with an unsatisfiable cell.
func NewStrictLibrary(shapes ...*Shape) (*Library, error) {
	return newLibrary(false, shapes)
}

func newLibrary(withFallback bool, shapes []*Shape) (*Library, error) {
	lib := &Library{byName: make(map[string]*Shape, len(shapes)+1)}
	for _, s := range shapes {
		if s == nil {
			continue
		}
		if _, dup := lib.byName[s.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateShape, s.name)
		}
		lib.byName[s.name] = s
		switch s.kind {
		case KindDSP, KindLUT:
			lib.general = append(lib.general, s)
			if s.kind == KindLUT && s.width == 1 && s.height == 1 && s.mask == nil && s.signedX && s.signedY {
				if lib.fallback == nil || s.cost < lib.fallback.cost {
					lib.fallback = s
				}
			}
		case KindVarLen:
			if s.minLen < 1 || s.maxLen < s.minLen {
				return nil, fmt.Errorf("%s: invalid length range [%d, %d]", s.name, s.minLen, s.maxLen)
			}
			lib.varShapes = append(lib.varShapes, s)
		case KindSuper:
			lib.supers = append(lib.supers, s)
		default:
			return nil, fmt.Errorf("%s: unknown kind %v", s.name, s.kind)
		}
	}
	if lib.fallback == nil && withFallback {
		if _, taken := lib.byName[FallbackName]; taken {
			return nil, fmt.Errorf("%w: %q is reserved for the 1x1 fallback", ErrDuplicateShape, FallbackName)
		}
		lib.fallback = NewLUT(FallbackName, 1, 1, 1, true, DefaultLUTInputs)
		lib.byName[FallbackName] = lib.fallback
		lib.general = append(lib.general, lib.fallback)
	}

	sort.SliceStable(lib.general, func(i, j int) bool {
		return rankBefore(lib.general[i], lib.general[j])
	})

	for _, s := range lib.varShapes {
		for k := s.minLen; k <= s.maxLen; k++ {
			p, err := s.Parametrize(kSize(s, k))
			if err != nil {
				return nil, err
			}
			if s.orient == Horizontal {
				lib.horizontal = append(lib.horizontal, p)
			} else {
				lib.vertical = append(lib.vertical, p)
			}
		}
	}
	byLength := func(ps []Parametrization) {
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].length != ps[j].length {
				return ps[i].length < ps[j].length
			}
			return ps[i].Cost() < ps[j].Cost()
		})
	}
	byLength(lib.vertical)
	byLength(lib.horizontal)

	sort.SliceStable(lib.supers, func(i, j int) bool {
		return lib.supers[i].name < lib.supers[j].name
	})

	lib.types = make([]*Shape, 0, len(lib.general)+len(lib.varShapes)+len(lib.supers))
	lib.types = append(lib.types, lib.general...)
	lib.types = append(lib.types, lib.varShapes...)
	lib.types = append(lib.types, lib.supers...)
	return lib, nil
}

func kSize(s *Shape, k int) (int, int, bool, bool) {
	if s.orient == Horizontal {
		return k, 2, false, false
	}
	return 2, k, false, false
}

// rankBefore is the documented priority order of the general pool:
// efficiency descending, then DSP before LUT, then larger area, then name.
func rankBefore(a, b *Shape) bool {
	ea, eb := a.Efficiency(), b.Efficiency()
	if ea != eb {
		return ea > eb
	}
	if (a.dsps > 0) != (b.dsps > 0) {
		return a.dsps > 0
	}
	if a.area != b.area {
		return a.area > b.area
	}
	return a.name < b.name
}

// General returns the fixed-size pool in priority order.
func (l *Library) General() []*Shape { return l.general }

// Vertical returns the 2xk pool sorted by k.
func (l *Library) Vertical() []Parametrization { return l.vertical }

// Horizontal returns the kx2 pool sorted by k.
func (l *Library) Horizontal() []Parametrization { return l.horizontal }

// Supertiles returns the supertile geometries ordered by name.
func (l *Library) Supertiles() []*Shape { return l.supers }

// Fallback returns the 1x1 LUT tile, nil for a strict library without one.
func (l *Library) Fallback() *Shape { return l.fallback }

// HasVariableLength reports whether any variable-length shape is present.
func (l *Library) HasVariableLength() bool { return len(l.varShapes) > 0 }

// Types lists every shape in a stable order: the general pool first, then
// variable-length shapes, then supertiles. Solver type indices derive from it.
func (l *Library) Types() []*Shape { return l.types }

// Lookup finds a shape by name.
func (l *Library) Lookup(name string) (*Shape, bool) {
	s, ok := l.byName[name]
	return s, ok
}

// LowerBound returns the shortest variable-length parametrization of pool
// whose length is at least need, or the longest one when none is. ok is false
// for an empty pool.
func LowerBound(pool []Parametrization, need int) (Parametrization, bool) {
	if len(pool) == 0 {
		return Parametrization{}, false
	}
	i := sort.Search(len(pool), func(i int) bool { return pool[i].length >= need })
	if i == len(pool) {
		i = len(pool) - 1
	}
	return pool[i], true
}

// MatchSuper checks whether two DSP footprints, in absolute grid coordinates,
// form the geometry of supertile s. On a match it returns the supertile anchor.
func MatchSuper(s *Shape, a, b geom.Rect) (geom.Coord, bool) {
	if s == nil || s.kind != KindSuper || len(s.parts) != 2 {
		return geom.Coord{}, false
	}
	box := a.Union(b)
	origin := geom.Coord{X: -box.Min.X, Y: -box.Min.Y}
	ra, rb := a.Translate(origin), b.Translate(origin)
	if (ra == s.parts[0] && rb == s.parts[1]) || (ra == s.parts[1] && rb == s.parts[0]) {
		return box.Min, true
	}
	return geom.Coord{}, false
}

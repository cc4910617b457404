package tiling

import (
	"fmt"
	"math"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
)

// Placement is one tile of a solution.
type Placement struct {
	Param  tile.Parametrization
	Anchor geom.Coord
}

// Footprint returns the effective bounding rectangle of the placement.
func (p Placement) Footprint() geom.Rect {
	return p.Param.Footprint(p.Anchor)
}

func (p Placement) String() string {
	return fmt.Sprintf("%s@%s", p.Param, p.Anchor)
}

// Solution is the ordered list of placements and their aggregate cost.
type Solution struct {
	Entries []Placement
	Cost    float64
}

// Failed reports whether s is the cost-bound failure sentinel.
func (s Solution) Failed() bool {
	return math.IsInf(s.Cost, 1)
}

// DSPCount returns the DSP blocks used by the solution.
func (s Solution) DSPCount() int {
	n := 0
	for _, e := range s.Entries {
		n += e.Param.DSPCount()
	}
	return n
}

// EntryCost sums the cost of the entries. For a well-formed solution it
// equals Cost.
func (s Solution) EntryCost() float64 {
	total := 0.0
	for _, e := range s.Entries {
		total += e.Param.Cost()
	}
	return total
}

// CountKind returns how many entries use a shape of kind k.
func (s Solution) CountKind(k tile.Kind) int {
	n := 0
	for _, e := range s.Entries {
		if e.Param.Shape().Kind() == k {
			n++
		}
	}
	return n
}

// Instance is the emission view of one solution entry.
type Instance struct {
	Index      int
	Name       string
	Shape      string
	Kind       tile.Kind
	Anchor     geom.Coord
	Width      int
	Height     int
	OutputBits int
	Weight     int
	Signed     geom.Signedness
	DSPs       int
	Cost       float64
}

// Instances lists the entries in solution order with stable instance names
// tile<i>_<shape>.
func (s Solution) Instances() []Instance {
	out := make([]Instance, 0, len(s.Entries))
	for i, e := range s.Entries {
		name := e.Param.Shape().Name()
		out = append(out, Instance{
			Index:      i,
			Name:       fmt.Sprintf("tile%d_%s", i, name),
			Shape:      name,
			Kind:       e.Param.Shape().Kind(),
			Anchor:     e.Anchor,
			Width:      e.Param.Width(),
			Height:     e.Param.Height(),
			OutputBits: e.Param.OutputBits(),
			Weight:     e.Anchor.Weight(),
			Signed:     e.Param.Signed(),
			DSPs:       e.Param.DSPCount(),
			Cost:       e.Param.Cost(),
		})
	}
	return out
}

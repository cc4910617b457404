package tiling

import "mulforge/internal/tile"

// substituteSupertiles makes one pass over the buffered DSP placements. Each
// placement is paired with the first later one whose footprints form a
// supertile of the library that is cheaper than the two blocks; the pair is
// replaced by the supertile at the position of the earlier one. Unmatched
// placements are kept as they are. It returns the resulting placements in
// buffer order and the cost saved.
func substituteSupertiles(lib *tile.Library, pending []Placement) ([]Placement, float64) {
	supers := lib.Supertiles()
	out := make([]Placement, 0, len(pending))
	if len(supers) == 0 {
		return append(out, pending...), 0
	}

	used := make([]bool, len(pending))
	saved := 0.0
	for i := range pending {
		if used[i] {
			continue
		}
		merged := false
		for j := i + 1; j < len(pending) && !merged; j++ {
			if used[j] {
				continue
			}
			a, b := pending[i], pending[j]
			combined := a.Param.Cost() + b.Param.Cost()
			for _, st := range supers {
				if st.Cost() >= combined {
					continue
				}
				at, ok := tile.MatchSuper(st, a.Footprint(), b.Footprint())
				if !ok {
					continue
				}
				sa, sb := a.Param.Signed(), b.Param.Signed()
				param, err := st.Parametrize(0, 0, sa.X || sb.X, sa.Y || sb.Y)
				if err != nil {
					continue
				}
				out = append(out, Placement{Param: param, Anchor: at})
				used[i], used[j] = true, true
				saved += combined - st.Cost()
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, pending[i])
		}
	}
	return out, saved
}

package target

import "mulforge/internal/tiling"

// Default returns the built-in target: a 24x17 unsigned DSP block usable in
// both orientations with cascaded pairs, and the usual small LUT multipliers.
func Default() *Target {
	return &Target{
		Name:      "generic",
		LUTInputs: 6,
		DSPs: []DSP{
			{Name: "dsp24x17", Width: 24, Height: 17, Cost: 40, SignExtend: true},
			{Name: "dsp17x24", Width: 17, Height: 24, Cost: 40, SignExtend: true},
		},
		LUTs: []LUT{
			{Name: "lut1x1", Width: 1, Height: 1, Signed: true},
			{Name: "lut2x2", Width: 2, Height: 2},
			{Name: "lut3x2", Width: 3, Height: 2},
			{Name: "lut2x3", Width: 2, Height: 3},
			{Name: "lut3x3", Width: 3, Height: 3},
		},
		VarLen: &VariableLength{Min: 2, Max: 32, Vertical: true, Horizontal: true},
		Supertiles: []Supertile{
			{Name: "dsp24x34", Cost: 75, A: []int{0, 0, 24, 17}, B: []int{0, 17, 24, 17}},
			{Name: "dsp34x24", Cost: 75, A: []int{0, 0, 17, 24}, B: []int{17, 0, 17, 24}},
		},
		Defaults: Defaults{
			DSPBudget:           tiling.Unlimited,
			OccupationThreshold: tiling.DefaultOccupationThreshold,
		},
	}
}

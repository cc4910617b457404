// Package tiling searches for a cover of the partial-product grid with tiles
// from a library.
//
// Every strategy implements Strategy and returns a Solution: the ordered tile
// placements plus their total cost. Strategies own a private field.Field per
// Solve call, so independent solves may run concurrently.
package tiling

import (
	"errors"
	"fmt"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
)

// Unlimited disables the DSP budget.
const Unlimited = -1

// DefaultOccupationThreshold is the minimum share of a DSP block that must
// produce useful bits before the block is considered.
const DefaultOccupationThreshold = 0.0

// ErrNoLibrary is returned when a problem has no tile library.
var ErrNoLibrary = errors.New("tiling: problem has no tile library")

// Problem is the input of a solve.
type Problem struct {
	Grid    geom.Grid
	Signed  geom.Signedness
	Library *tile.Library

	// DSPBudget caps the DSP blocks of the solution; Unlimited for no cap.
	DSPBudget int
	// OccupationThreshold is the minimum covered/area ratio of a DSP candidate.
	OccupationThreshold float64
	// CostBound aborts the search once the running cost exceeds it. Zero
	// disables the bound.
	CostBound float64

	VariableLength bool
	SuperTiles     bool
}

// Validate checks the problem parameters.
func (p Problem) Validate() error {
	if p.Library == nil {
		return ErrNoLibrary
	}
	if p.Grid.W < 0 || p.Grid.H < 0 {
		return fmt.Errorf("tiling: negative grid %s", p.Grid)
	}
	if p.DSPBudget < Unlimited {
		return fmt.Errorf("tiling: invalid DSP budget %d", p.DSPBudget)
	}
	if p.OccupationThreshold < 0 || p.OccupationThreshold > 1 {
		return fmt.Errorf("tiling: occupation threshold %g outside [0, 1]", p.OccupationThreshold)
	}
	if p.CostBound < 0 {
		return fmt.Errorf("tiling: negative cost bound %g", p.CostBound)
	}
	return nil
}

// DSPAllowed reports whether a solution may use n DSP blocks.
func (p Problem) DSPAllowed(n int) bool {
	return p.DSPBudget == Unlimited || n <= p.DSPBudget
}

// Bounded reports whether the cost bound is active.
func (p Problem) Bounded() bool {
	return p.CostBound > 0
}

func (p Problem) String() string {
	budget := "unlimited"
	if p.DSPBudget != Unlimited {
		budget = fmt.Sprint(p.DSPBudget)
	}
	return fmt.Sprintf("%s %s dsp=%s", p.Grid, p.Signed, budget)
}

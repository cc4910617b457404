package tiling

import (
	"context"
	"sort"
)

// Strategy produces a Solution for a Problem.
type Strategy interface {
	Name() string
	Solve(ctx context.Context, p Problem) (Solution, error)
}

// Cheapest returns the index of the lowest-cost solution among results whose
// error is nil, or -1 when none succeeded. Ties keep the first.
func Cheapest(sols []Solution, errs []error) int {
	best := -1
	for i := range sols {
		if i < len(errs) && errs[i] != nil {
			continue
		}
		if sols[i].Failed() {
			continue
		}
		if best < 0 || sols[i].Cost < sols[best].Cost {
			best = i
		}
	}
	return best
}

// SortInstances orders instances by weight, then anchor row, then column.
// Emission stages that build the bit heap column by column use this order.
func SortInstances(in []Instance) {
	sort.SliceStable(in, func(i, j int) bool {
		a, b := in[i], in[j]
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		if a.Anchor.Y != b.Anchor.Y {
			return a.Anchor.Y < b.Anchor.Y
		}
		return a.Anchor.X < b.Anchor.X
	})
}

package exact

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"mulforge/internal/geom"
	"mulforge/internal/tiling"
	"mulforge/internal/trace"
)

// DefaultMaxCostUnits bounds the cost counter of the SAT model: the bound in
// cost units the counter has to represent.
const DefaultMaxCostUnits = 1 << 10

// DefaultMaxRegisters bounds the size of the cost counter, candidates times
// cost units.
const DefaultMaxRegisters = 1 << 20

const pollInterval = 20 * time.Millisecond

// SAT finds a minimum-cost tiling by repeated SAT calls. Every candidate is a
// boolean variable and each cell is covered by exactly one chosen candidate.
// The DSP count goes through a cardinality network. The cost goes through a
// weighted sequential counter that only counts up to the cost of the greedy
// tiling, which bounds the optimum from above. After every satisfiable call
// the bound is tightened below the cost just found, until the model becomes
// unsatisfiable.
//
// A solve that runs longer than Timeout fails with context.DeadlineExceeded.
type SAT struct {
	MaxCandidates int           // 0 selects DefaultMaxCandidates
	MaxCostUnits  int           // 0 selects DefaultMaxCostUnits
	Timeout       time.Duration // 0 for no limit
}

// Name implements tiling.Strategy.
func (SAT) Name() string { return "sat" }

// Solve implements tiling.Strategy.
func (s SAT) Solve(ctx context.Context, p tiling.Problem) (tiling.Solution, error) {
	if err := p.Validate(); err != nil {
		return tiling.Solution{}, err
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	span, ctx := trace.Start(ctx, trace.ScopeSolve, s.Name())
	sol, err := s.solve(ctx, p, span)
	span.WithExtra("grid", p.Grid.String()).WithExtra("entries", strconv.Itoa(len(sol.Entries)))
	if err != nil {
		span.End(err.Error())
		return sol, err
	}
	span.End(fmt.Sprintf("cost %g", sol.Cost))
	return sol, nil
}

func (s SAT) solve(ctx context.Context, p tiling.Problem, span *trace.Span) (tiling.Solution, error) {
	g := p.Grid
	if g.Cells() == 0 {
		return tiling.Solution{}, nil
	}
	limit := s.MaxCandidates
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}
	maxUnits := s.MaxCostUnits
	if maxUnits <= 0 {
		maxUnits = DefaultMaxCostUnits
	}

	table := NewTable(p.Library)
	cands, err := Enumerate(p, table, limit)
	if err != nil {
		return tiling.Solution{}, err
	}
	cells := byCell(cands, g.Cells())
	for idx, list := range cells {
		if len(list) == 0 {
			return tiling.Solution{}, &tiling.TilingError{Kind: tiling.Unsatisfiable, Strategy: s.Name(), Cursor: g.At(idx)}
		}
	}

	units, scale := quantise(cands)
	total := 0
	for _, u := range units {
		total += u
	}
	ceiling := total
	if p.Bounded() {
		ceiling = min(ceiling, int(math.Floor(p.CostBound*scale+1e-9)))
	}
	seed, err := tiling.Greedy{}.Solve(ctx, p)
	if err := ctx.Err(); err != nil {
		return tiling.Solution{}, err
	}
	seeded := err == nil
	if seeded {
		ceiling = min(ceiling, int(math.Ceil(seed.Cost*scale-1e-9)))
	}
	if ceiling > maxUnits {
		return tiling.Solution{}, fmt.Errorf("%w: %d cost units (limit %d)", ErrModelTooLarge, ceiling, maxUnits)
	}
	if registers := len(cands) * ceiling; registers > DefaultMaxRegisters {
		return tiling.Solution{}, fmt.Errorf("%w: %d counter registers (limit %d)", ErrModelTooLarge, registers, DefaultMaxRegisters)
	}

	c := logic.NewCCap(len(cands) * 4)
	lits := make([]z.Lit, len(cands))
	for i := range lits {
		lits[i] = c.Lit()
	}

	budget := c.T
	if p.DSPBudget != tiling.Unlimited {
		var dsps []z.Lit
		for i, cd := range cands {
			for k := 0; k < cd.Param.DSPCount(); k++ {
				dsps = append(dsps, lits[i])
			}
		}
		if len(dsps) > 0 {
			budget = c.CardSort(dsps).Leq(p.DSPBudget)
		}
	}

	solver := gini.New()
	c.ToCnf(solver)
	for _, list := range cells {
		for _, i := range list {
			solver.Add(lits[i])
		}
		solver.Add(z.LitNull)
		for a := 0; a < len(list); a++ {
			for b := a + 1; b < len(list); b++ {
				addClause(solver, lits[list[a]].Not(), lits[list[b]].Not())
			}
		}
	}
	addClause(solver, budget)
	atLeast := costCounter(c, solver, lits, units, ceiling)

	var best []int
	rounds := 0
	for bound := ceiling; bound >= 0; {
		if err := ctx.Err(); err != nil {
			return tiling.Solution{}, err
		}
		if bound < ceiling {
			solver.Assume(atLeast[bound].Not())
		}
		res, err := solveCtx(ctx, solver)
		if err != nil {
			return tiling.Solution{}, err
		}
		rounds++
		if res != 1 {
			break
		}
		best = best[:0]
		used := 0
		for i := range lits {
			if solver.Value(lits[i]) {
				best = append(best, i)
				used += units[i]
			}
		}
		span.Point(trace.ScopePlacement, "improved", fmt.Sprintf("%d units", used),
			"round", strconv.Itoa(rounds), "entries", strconv.Itoa(len(best)))
		bound = used - 1
	}

	if len(best) == 0 {
		// the greedy tiling may use placements the model leaves out
		if seeded {
			span.Point(trace.ScopePlacement, "seed", fmt.Sprintf("cost %g", seed.Cost))
			return seed, nil
		}
		if p.Bounded() {
			return tiling.Solution{Cost: math.Inf(1)}, &tiling.TilingError{
				Kind:     tiling.CostExceeded,
				Strategy: s.Name(),
				Cost:     math.Inf(1),
				Bound:    p.CostBound,
			}
		}
		return tiling.Solution{}, &tiling.TilingError{Kind: tiling.Unsatisfiable, Strategy: s.Name()}
	}
	return assemble(cands, best), nil
}

func addClause(solver *gini.Gini, lits ...z.Lit) {
	for _, l := range lits {
		solver.Add(l)
	}
	solver.Add(z.LitNull)
}

// costCounter adds a weighted sequential counter over lits and forbids any
// assignment whose weight exceeds ceiling. It returns the counter outputs:
// out[j] is forced true whenever the chosen weight is at least j+1, so
// assuming out[b].Not() bounds the weight by b.
func costCounter(c *logic.C, solver *gini.Gini, lits []z.Lit, weights []int, ceiling int) []z.Lit {
	out := make([]z.Lit, ceiling)
	for j := range out {
		out[j] = c.Lit()
	}
	if ceiling == 0 {
		for i, w := range weights {
			if w > 0 {
				addClause(solver, lits[i].Not())
			}
		}
		return out
	}

	var prev []z.Lit
	for i, w := range weights {
		x := lits[i]
		switch {
		case w == 0:
			continue
		case w > ceiling:
			addClause(solver, x.Not())
			continue
		}
		cur := make([]z.Lit, ceiling)
		for j := range cur {
			cur[j] = c.Lit()
		}
		for j := 0; j < w; j++ {
			addClause(solver, x.Not(), cur[j])
		}
		if prev != nil {
			for j := 0; j < ceiling; j++ {
				addClause(solver, prev[j].Not(), cur[j])
			}
			for j := 0; j+w < ceiling; j++ {
				addClause(solver, x.Not(), prev[j].Not(), cur[j+w])
			}
			addClause(solver, x.Not(), prev[ceiling-w].Not())
		}
		prev = cur
	}
	if prev != nil {
		for j := range out {
			addClause(solver, prev[j].Not(), out[j])
		}
	}
	return out
}

// assemble orders the chosen candidates row-major by anchor.
func assemble(cands []Candidate, chosen []int) tiling.Solution {
	sol := tiling.Solution{Entries: make([]tiling.Placement, 0, len(chosen))}
	for _, i := range chosen {
		sol.Entries = append(sol.Entries, tiling.Placement{Param: cands[i].Param, Anchor: cands[i].Anchor})
		sol.Cost += cands[i].Param.Cost()
	}
	sort.SliceStable(sol.Entries, func(i, j int) bool {
		return rowMajor(sol.Entries[i].Anchor, sol.Entries[j].Anchor)
	})
	return sol
}

func rowMajor(a, b geom.Coord) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// quantise maps candidate costs to integer units. It picks the smallest
// decimal scale that makes every cost integral (up to 1/1000) and divides the
// units by their common divisor. It returns the units and the scale from cost
// to units.
func quantise(cands []Candidate) ([]int, float64) {
	scale := 1.0
	for ; scale < 1000; scale *= 10 {
		integral := true
		for _, cd := range cands {
			v := cd.Param.Cost() * scale
			if math.Abs(v-math.Round(v)) > 1e-6 {
				integral = false
				break
			}
		}
		if integral {
			break
		}
	}
	units := make([]int, len(cands))
	div := 0
	for i, cd := range cands {
		units[i] = max(int(math.Round(cd.Param.Cost()*scale)), 0)
		div = gcd(div, units[i])
	}
	if div > 1 {
		for i := range units {
			units[i] /= div
		}
		scale /= float64(div)
	}
	return units, scale
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// solveCtx runs one solver call, stopping it when ctx is done.
func solveCtx(ctx context.Context, g *gini.Gini) (int, error) {
	gs := g.GoSolve()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		if res, ok := gs.Test(); ok {
			return res, nil
		}
		select {
		case <-ctx.Done():
			gs.Stop()
			return 0, ctx.Err()
		case <-tick.C:
		}
	}
}

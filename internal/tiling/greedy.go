package tiling

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"mulforge/internal/field"
	"mulforge/internal/geom"
	"mulforge/internal/tile"
	"mulforge/internal/trace"
)

// Greedy covers the grid in row-major order, committing at every cursor the
// best candidate of the library's general pool.
type Greedy struct{}

// Name implements Strategy.
func (Greedy) Name() string { return "greedy" }

// Solve implements Strategy.
func (g Greedy) Solve(ctx context.Context, p Problem) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	span, ctx := trace.Start(ctx, trace.ScopeSolve, g.Name())

	s := &greedySearch{
		p:    p,
		f:    field.New(p.Grid, p.Signed),
		span: span,
	}
	sol, err := s.run(ctx)

	span.WithExtra("grid", p.Grid.String()).
		WithExtra("entries", strconv.Itoa(len(sol.Entries))).
		WithExtra("dsp", strconv.Itoa(s.dspUsed))
	if err != nil {
		span.End(err.Error())
		return sol, err
	}
	span.End(fmt.Sprintf("cost %g", sol.Cost))
	return sol, nil
}

type greedySearch struct {
	p    Problem
	f    *field.Field
	span *trace.Span

	dspUsed int
	total   float64
	entries []Placement
	pending []Placement // DSP placements awaiting the supertile pass
}

func (s *greedySearch) run(ctx context.Context) (Solution, error) {
	buffer := s.p.SuperTiles && len(s.p.Library.Supertiles()) > 0

	for s.f.Missing() > 0 {
		if err := ctx.Err(); err != nil {
			return Solution{}, err
		}
		cur := s.f.State().Cursor
		nX, nY := s.f.FreeRunRight(cur), s.f.FreeRunDown(cur)

		best, ok := s.pick(cur, nX, nY)
		if !ok {
			return Solution{}, &TilingError{Kind: Unsatisfiable, Strategy: "greedy", Cursor: cur}
		}
		s.f.Commit(cur, best)
		s.total += best.Cost()
		s.span.Point(trace.ScopePlacement, "commit", best.String(),
			"x", strconv.Itoa(cur.X), "y", strconv.Itoa(cur.Y), "missing", strconv.Itoa(s.f.Missing()))

		if s.p.Bounded() && s.total > s.p.CostBound {
			return Solution{Cost: math.Inf(1)}, &TilingError{
				Kind:     CostExceeded,
				Strategy: "greedy",
				Cursor:   cur,
				Cost:     s.total,
				Bound:    s.p.CostBound,
			}
		}

		placed := Placement{Param: best, Anchor: cur}
		if best.DSPCount() > 0 {
			s.dspUsed += best.DSPCount()
			if buffer {
				s.pending = append(s.pending, placed)
				continue
			}
		}
		s.entries = append(s.entries, placed)
	}

	if len(s.pending) > 0 {
		merged, saved := substituteSupertiles(s.p.Library, s.pending)
		if saved > 0 {
			s.span.Point(trace.ScopePlacement, "supertiles", fmt.Sprintf("saved %g", saved),
				"before", strconv.Itoa(len(s.pending)), "after", strconv.Itoa(len(merged)))
		}
		s.entries = append(s.entries, merged...)
		s.total -= saved
	}
	return Solution{Entries: s.entries, Cost: s.total}, nil
}

// pick scans the general pool at cur. A DSP candidate that meets the
// occupation threshold beats every non-DSP candidate; among DSP candidates the
// most covering wins and DSP scanning stops at the first one that does not
// improve it. Non-DSP scanning stops once a fully used candidate fails to beat
// the incumbent. The variable-length preference is checked once the scan
// reaches the non-DSP part of the pool without a DSP match.
func (s *greedySearch) pick(cur geom.Coord, nX, nY int) (tile.Parametrization, bool) {
	var (
		bestDSP      tile.Parametrization
		bestDSPCover int
		haveDSP      bool
		dspDone      bool

		best      tile.Parametrization
		bestScore float64
		have      bool
		lutDone   bool

		varChecked bool
	)
	g, signed := s.p.Grid, s.p.Signed

	for _, shape := range s.p.Library.General() {
		if shape.DSPCount() > 0 {
			if dspDone || !s.p.DSPAllowed(s.dspUsed+shape.DSPCount()) {
				continue
			}
			cand := shape.TryDSPExpand(cur, g, signed)
			covered := s.f.CheckPlacement(cur, cand)
			if covered == 0 {
				s.reject(shape, "overlap or empty")
				continue
			}
			if float64(covered)/float64(cand.Area()) < s.p.OccupationThreshold {
				s.reject(shape, "below occupation threshold")
				continue
			}
			if haveDSP && covered <= bestDSPCover {
				dspDone = true
				continue
			}
			bestDSP, bestDSPCover, haveDSP = cand, covered, true
			continue
		}
		if haveDSP || lutDone {
			continue
		}
		if !varChecked {
			varChecked = true
			if v, ok := s.variableLength(cur, nX, nY); ok {
				return v, true
			}
		}

		if shape.Area() > nX*nY {
			continue
		}
		cand := shape.TryDSPExpand(cur, g, signed)
		covered := s.f.CheckPlacement(cur, cand)
		if covered == 0 {
			s.reject(shape, "overlap or empty")
			continue
		}
		area := cand.Area()
		score := cand.Efficiency() * float64(covered) / float64(area)
		if have && score <= bestScore {
			lutDone = covered == area
			continue
		}
		best, bestScore, have = cand, score, true
	}

	if haveDSP {
		return bestDSP, true
	}
	if !varChecked {
		if v, ok := s.variableLength(cur, nX, nY); ok {
			return v, true
		}
	}
	return best, have
}

// variableLength returns the shortest variable-length tile whose varying side
// reaches the longer free run, when the free area at cur is large enough. If
// that tile does not fit, the longest shorter one is tried.
func (s *greedySearch) variableLength(cur geom.Coord, nX, nY int) (tile.Parametrization, bool) {
	lib := s.p.Library
	if !s.p.VariableLength || !lib.HasVariableLength() {
		return tile.Parametrization{}, false
	}
	if !((nX >= 6 && nY >= 2) || (nX >= 2 && nY >= 6)) {
		return tile.Parametrization{}, false
	}
	pool, need := lib.Horizontal(), nX
	if nX < nY || len(pool) == 0 {
		pool, need = lib.Vertical(), nY
	}
	if len(pool) == 0 {
		pool, need = lib.Horizontal(), nX
	}
	cand, ok := tile.LowerBound(pool, need)
	if !ok {
		return tile.Parametrization{}, false
	}
	if s.f.CheckPlacement(cur, cand) > 0 {
		return cand, true
	}
	for i := len(pool) - 1; i >= 0; i-- {
		if pool[i].Length() >= cand.Length() {
			continue
		}
		if s.f.CheckPlacement(cur, pool[i]) > 0 {
			return pool[i], true
		}
		break
	}
	s.reject(cand.Shape(), "variable-length tile does not fit")
	return tile.Parametrization{}, false
}

func (s *greedySearch) reject(shape *tile.Shape, why string) {
	s.span.Point(trace.ScopeCandidate, "reject", shape.Name(), "reason", why)
}

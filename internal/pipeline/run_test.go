package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mulforge/internal/geom"
	"mulforge/internal/scache"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

func problem(t *testing.T, w, h, budget int) tiling.Problem {
	t.Helper()
	lib, err := tile.NewLibrary(
		tile.NewDSP("dsp4x4", 4, 4, 5, true),
		tile.NewLUT("lut2x2", 2, 2, 0, false, 6),
		tile.NewLUT("lut1x1", 1, 1, 1, true, 6),
	)
	if err != nil {
		t.Fatal(err)
	}
	return tiling.Problem{Grid: geom.Grid{W: w, H: h}, Library: lib, DSPBudget: budget}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(job string, status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Job == job && ev.Status == status {
			n++
		}
	}
	return n
}

// badStrategy returns a solution that leaves the grid uncovered.
type badStrategy struct{}

func (badStrategy) Name() string { return "bad" }

func (badStrategy) Solve(context.Context, tiling.Problem) (tiling.Solution, error) {
	return tiling.Solution{}, nil
}

func TestRunConcurrentJobs(t *testing.T) {
	var jobs []Job
	for size := 4; size <= 12; size++ {
		jobs = append(jobs, Job{Strategy: tiling.Greedy{}, Problem: problem(t, size, size, 2)})
	}
	rec := &recorder{}
	results, err := Run(context.Background(), jobs, Options{Jobs: 3, Progress: rec})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if !r.OK() {
			t.Fatalf("%s: %v", r.Job.Name, r.Err)
		}
		if r.Job.Problem.Grid != jobs[i].Problem.Grid {
			t.Fatalf("result %d out of order: %s", i, r.Job.Name)
		}
		if r.Findings == nil || r.Findings.HasErrors() {
			t.Fatalf("%s: findings %v", r.Job.Name, r.Findings)
		}
		if !r.Timings.Has(StageSolve) || !r.Timings.Has(StageCheck) {
			t.Fatalf("%s: timings missing", r.Job.Name)
		}
		if rec.count(r.Job.Name, StatusQueued) != 1 || rec.count(r.Job.Name, StatusDone) != 1 {
			t.Fatalf("%s: events queued=%d done=%d", r.Job.Name,
				rec.count(r.Job.Name, StatusQueued), rec.count(r.Job.Name, StatusDone))
		}
	}
	if jobs[0].Name != "" {
		t.Fatal("Run renamed the caller's jobs")
	}
	if results[0].Job.Name != "greedy 4x4" {
		t.Fatalf("default name %q", results[0].Job.Name)
	}
	if rec.count("", StatusDone) != 1 {
		t.Fatal("missing final event")
	}
}

func TestRunRecordsFailures(t *testing.T) {
	jobs := []Job{
		{Name: "ok", Strategy: tiling.Greedy{}, Problem: problem(t, 6, 6, 1)},
		{Name: "bad", Strategy: badStrategy{}, Problem: problem(t, 6, 6, 1)},
	}
	results, err := Run(context.Background(), jobs, Options{})
	if err != nil {
		t.Fatalf("run without FailFast: %v", err)
	}
	if !results[0].OK() {
		t.Fatalf("ok job: %v", results[0].Err)
	}
	if !tiling.IsKind(results[1].Err, tiling.InvalidSolution) {
		t.Fatalf("bad job: %v", results[1].Err)
	}
	if Cheapest(results) != 0 {
		t.Fatalf("cheapest = %d", Cheapest(results))
	}

	_, err = Run(context.Background(), jobs, Options{Jobs: 1, FailFast: true})
	if !tiling.IsKind(err, tiling.InvalidSolution) {
		t.Fatalf("FailFast: %v", err)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Run(ctx, []Job{{Strategy: tiling.Greedy{}, Problem: problem(t, 8, 8, 1)}}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if results[0].OK() {
		t.Fatal("canceled job succeeded")
	}
}

func TestRunUsesCache(t *testing.T) {
	c, err := scache.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	jobs := []Job{{Name: "j", Strategy: tiling.Greedy{}, Problem: problem(t, 9, 7, 1)}}
	first, err := Run(context.Background(), jobs, Options{Cache: c})
	if err != nil || first[0].Cached {
		t.Fatalf("first run: cached=%v err=%v", first[0].Cached, err)
	}
	second, err := Run(context.Background(), jobs, Options{Cache: c})
	if err != nil || !second[0].Cached {
		t.Fatalf("second run: cached=%v err=%v", second[0].Cached, err)
	}
	if second[0].Solution.Cost != first[0].Solution.Cost {
		t.Fatalf("cached cost %g, solved %g", second[0].Solution.Cost, first[0].Solution.Cost)
	}
	if second[0].Timings.Has(StageSolve) {
		t.Fatal("cache hit still solved")
	}
}

func TestRunRejectsMissingStrategy(t *testing.T) {
	if _, err := Run(context.Background(), []Job{{Name: "x"}}, Options{}); err == nil {
		t.Fatal("expected an error")
	}
}

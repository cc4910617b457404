// Package pipeline runs independent solve jobs concurrently, each on its own
// problem with its own field, and reports their progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"mulforge/internal/diag"
	"mulforge/internal/scache"
	"mulforge/internal/tiling"
	"mulforge/internal/trace"
)

// Job is one strategy run on one problem.
type Job struct {
	Name     string
	Strategy tiling.Strategy
	Problem  tiling.Problem
}

// Options configures Run.
type Options struct {
	Jobs     int // concurrent jobs; 0 selects GOMAXPROCS
	Progress ProgressSink
	Cache    *scache.Cache // nil disables caching
	FailFast bool          // cancel the remaining jobs after the first failure
}

// Result is the outcome of one job.
type Result struct {
	Job      Job
	Solution tiling.Solution
	Findings *diag.Bag
	Cached   bool
	Err      error
	Timings  Timings
}

// OK reports whether the job produced a valid solution.
func (r Result) OK() bool { return r.Err == nil }

// Run executes jobs and returns one result per job, in job order. Unnamed
// jobs are named after their strategy and grid. Job
// failures are recorded in the results; the returned error is the first job
// error when FailFast is set, or the context error.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}
	jobs = append([]Job(nil), jobs...)
	for i, job := range jobs {
		if job.Strategy == nil {
			return nil, fmt.Errorf("job %d (%s): missing strategy", i, job.Name)
		}
		if job.Name == "" {
			jobs[i].Name = fmt.Sprintf("%s %s", job.Strategy.Name(), job.Problem.Grid)
		}
	}

	span, ctx := trace.Start(ctx, trace.ScopeCommand, "pipeline")

	n := opts.Jobs
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	emitQueued(opts.Progress, jobs)

	// Each goroutine writes only its own slot of results.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(n, len(jobs)))
	for i := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Job: jobs[i], Err: err}
				emit(opts.Progress, jobs[i].Name, StageSolve, StatusError, err, 0)
				return nil
			}
			results[i] = runJob(trace.WithJob(gctx, jobs[i].Name), jobs[i], opts)
			if results[i].Err != nil && opts.FailFast {
				return fmt.Errorf("%s: %w", jobs[i].Name, results[i].Err)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	span.WithExtra("jobs", fmt.Sprint(len(jobs))).WithExtra("failed", fmt.Sprint(failed))
	if err != nil {
		span.End(err.Error())
	} else {
		span.End("")
	}
	emit(opts.Progress, "", StageSolve, finalStatus(failed), err, 0)
	return results, err
}

func finalStatus(failed int) Status {
	if failed > 0 {
		return StatusError
	}
	return StatusDone
}

func runJob(ctx context.Context, job Job, opts Options) Result {
	res := Result{Job: job}
	sink := opts.Progress
	name := job.Strategy.Name()

	var key scache.Digest
	if opts.Cache != nil {
		key = scache.Key(name, job.Problem)
		emit(sink, job.Name, StageCache, StatusWorking, nil, 0)
		start := time.Now()
		sol, ok, err := opts.Cache.Get(key, job.Problem.Library)
		res.Timings.Set(StageCache, time.Since(start))
		if err != nil && !errors.Is(err, scache.ErrStale) {
			cacheProblem(ctx, err)
		}
		if ok {
			res.Solution, res.Cached = sol, true
		}
	}

	if !res.Cached {
		emit(sink, job.Name, StageSolve, StatusWorking, nil, 0)
		start := time.Now()
		sol, err := job.Strategy.Solve(ctx, job.Problem)
		elapsed := time.Since(start)
		res.Timings.Set(StageSolve, elapsed)
		res.Solution = sol
		if err != nil {
			res.Err = err
			emit(sink, job.Name, StageSolve, StatusError, err, elapsed)
			return res
		}
	}

	emit(sink, job.Name, StageCheck, StatusWorking, nil, 0)
	start := time.Now()
	res.Findings = tiling.Check(res.Solution, job.Problem)
	res.Timings.Set(StageCheck, time.Since(start))
	if res.Findings.HasErrors() {
		res.Findings.Sort()
		res.Err = &tiling.TilingError{Kind: tiling.InvalidSolution, Strategy: name, Findings: res.Findings}
		emit(sink, job.Name, StageCheck, StatusError, res.Err, 0)
		return res
	}

	if opts.Cache != nil && !res.Cached {
		emit(sink, job.Name, StageStore, StatusWorking, nil, 0)
		start := time.Now()
		if err := opts.Cache.Put(key, name, job.Problem.Grid, res.Solution); err != nil {
			cacheProblem(ctx, err)
		}
		res.Timings.Set(StageStore, time.Since(start))
	}
	emit(sink, job.Name, StageCheck, StatusDone, nil, res.Timings.Sum(StageCache, StageSolve, StageCheck, StageStore))
	return res
}

// Names lists the job names, as shown by progress views.
func Names(jobs []Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Name
	}
	return out
}

// Cheapest returns the index of the cheapest successful result, or -1.
func Cheapest(results []Result) int {
	sols := make([]tiling.Solution, len(results))
	errs := make([]error, len(results))
	for i, r := range results {
		sols[i], errs[i] = r.Solution, r.Err
	}
	return tiling.Cheapest(sols, errs)
}

func emitQueued(sink ProgressSink, jobs []Job) {
	if sink == nil {
		return
	}
	for _, job := range jobs {
		sink.OnEvent(Event{Job: job.Name, Stage: StageSolve, Status: StatusQueued})
	}
}

func emit(sink ProgressSink, job string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Job: job, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func cacheProblem(ctx context.Context, err error) {
	sc := trace.CurrentSpan(ctx)
	trace.Point(trace.FromContext(ctx), trace.ScopeSolve, "cache", err.Error(), sc.SpanID, "job", sc.Job)
}

package pipeline

import "time"

// Stage describes a phase of one job.
type Stage string

const (
	// StageCache is the cache lookup.
	StageCache Stage = "cache"
	// StageSolve is the strategy run.
	StageSolve Stage = "solve"
	// StageCheck is the validation of the solution.
	StageCheck Stage = "check"
	// StageStore is the cache write.
	StageStore Stage = "store"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the job is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the job is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the job is done.
	StatusDone Status = "done"
	// StatusError indicates the job failed.
	StatusError Status = "error"
)

// Event reports progress for a job (or for the whole run when Job is empty).
type Event struct {
	Job     string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Jobs run concurrently, so OnEvent
// must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}

package trace

import "errors"

// MultiTracer fans out trace events to multiple tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer creates a new MultiTracer that emits to all provided tracers.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{
		tracers: tracers,
		level:   level,
	}
}

// Emit sends the event to all underlying tracers.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes every tracer and joins their errors.
func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every tracer and joins their errors.
func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// Ring returns the first ring tracer among the tracers, or nil.
func (t *MultiTracer) Ring() *RingTracer {
	for _, tr := range t.tracers {
		if ring, ok := tr.(*RingTracer); ok {
			return ring
		}
	}
	return nil
}

// Level returns the configured level.
func (t *MultiTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *MultiTracer) Enabled() bool {
	return t.level > LevelOff
}

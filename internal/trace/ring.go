package trace

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// RingTracer keeps the last events in memory. The CLI dumps it when a
// command panics or, with --trace-mode=ring, when the command ends.
//
// Besides the window of recent events it tracks spans that began but have
// not ended, so a crash report names the solves in flight even after their
// begin events were overwritten by placements.
type RingTracer struct {
	mu     sync.RWMutex
	events []Event
	head   int  // next write position
	full   bool // has wrapped around
	level  Level
	open   map[uint64]Event // span id -> begin event
}

// DefaultRingSize holds a few thousand placements, enough for the tail of a
// greedy run on a large grid.
const DefaultRingSize = 4096

// NewRingTracer keeps the last capacity events at or above level.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{
		events: make([]Event, capacity),
		level:  level,
		open:   make(map[uint64]Event),
	}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case KindSpanBegin:
		t.open[ev.SpanID] = *ev
	case KindSpanEnd:
		delete(t.open, ev.SpanID)
	}
	t.events[t.head] = *ev
	t.head = (t.head + 1) % len(t.events)
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns the stored events oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Event, t.head)
		copy(result, t.events[:t.head])
		return result
	}
	result := make([]Event, len(t.events))
	n := copy(result, t.events[t.head:])
	copy(result[n:], t.events[:t.head])
	return result
}

// InFlight returns the begin events of spans that have not ended, coarsest
// scope first and in start order within a scope.
func (t *RingTracer) InFlight() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Event, 0, len(t.open))
	for _, ev := range t.open {
		result = append(result, ev)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Scope != result[j].Scope {
			return result[i].Scope < result[j].Scope
		}
		return result[i].Seq < result[j].Seq
	})
	return result
}

// Dump writes the stored events in format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// DumpCrash writes the spans still in flight, then the recent events. It
// is meant for panics inside a solve.
func (t *RingTracer) DumpCrash(w io.Writer) error {
	for _, ev := range t.InFlight() {
		name := ev.Name
		if ev.Job != "" {
			name = ev.Job + ": " + name
		}
		if _, err := fmt.Fprintf(w, "in flight: %s %s\n", ev.Scope, name); err != nil {
			return err
		}
	}
	return t.Dump(w, FormatText)
}

// Flush and Close have nothing to do; the ring only lives in memory.
func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

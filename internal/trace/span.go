package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 {
	return globalSpans.Add(1)
}

// Span is an open begin event. End emits the matching end event.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	job      string
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Start opens a span under the span of ctx, on the tracer of ctx, and
// returns it with a context for its children.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sc := CurrentSpan(ctx)
	span := begin(FromContext(ctx), scope, name, sc.SpanID, sc.Job)
	if span.id == 0 {
		return span, ctx
	}
	return span, WithSpanContext(ctx, SpanContext{SpanID: span.id, Job: sc.Job})
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, parent, "")
}

func begin(t Tracer, scope Scope, name string, parent uint64, job string) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		// Points under a filtered span still reach the tracer with the
		// span's parent, so a detail trace keeps its placements.
		return &Span{tracer: t, parentID: parent, job: job, scope: scope}
	}
	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		job:      job,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Seq:      NextSeq(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Job:      job,
		Name:     name,
	})
	return s
}

// End emits the end event and returns the span's duration. Spans that were
// filtered out return 0.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Job:      s.job,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for a filtered span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event inside s. kv holds key, value pairs; an odd
// trailing key is dropped.
func (s *Span) Point(scope Scope, name, detail string, kv ...string) {
	if s == nil {
		return
	}
	parent := s.id
	if parent == 0 {
		parent = s.parentID
	}
	point(s.tracer, scope, name, detail, parent, s.job, kv)
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64, kv ...string) {
	point(t, scope, name, detail, parent, "", kv)
}

func point(t Tracer, scope Scope, name, detail string, parent uint64, job string, kv []string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	var extra map[string]string
	if len(kv) >= 2 {
		extra = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			extra[kv[i]] = kv[i+1]
		}
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Job:      job,
		Name:     name,
		Detail:   detail,
		Extra:    extra,
	})
}

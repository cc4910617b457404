package trace

import "context"

type ctxKey struct{}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is what child spans inherit: the enclosing span and the
// pipeline job it runs for.
type SpanContext struct {
	SpanID uint64
	Job    string
}

type spanCtxKey struct{}

// CurrentSpan returns the span context of ctx; the zero value at the root.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	if sc, ok := ctx.Value(spanCtxKey{}).(SpanContext); ok {
		return sc
	}
	return SpanContext{}
}

// WithSpanContext attaches span context.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// WithJob labels every span started under ctx with job.
func WithJob(ctx context.Context, job string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Job = job
	return WithSpanContext(ctx, sc)
}

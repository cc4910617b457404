// Package trace is the structured event log of mulforge.
//
// Strategies open a span per solve and emit point events for committed
// placements and rejected candidates. The pipeline labels every span with the
// job it runs for, so interleaved events of concurrent jobs stay readable.
//
//	mulforge tile 24x17 --trace=- --trace-level=detail
//
// Tracers:
//
//   - Nop: tracing disabled
//   - StreamTracer: writes events as they arrive (file or stderr)
//   - RingTracer: keeps the last events in memory
//   - MultiTracer: fans out to several tracers
//
// Levels select scopes: LevelPhase emits commands and solves, LevelDetail adds
// placements, LevelDebug adds candidates. LevelError emits nothing and relies
// on the ring dump after a panic.
//
// Spans follow the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopeSolve, "greedy")
//	span.Point(trace.ScopePlacement, "commit", "dsp24x17", "x", "0", "y", "0")
//	span.End("cost 40")
package trace

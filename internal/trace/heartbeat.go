package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a liveness event at a fixed interval, so that a long exact
// solve still shows progress in the trace. Each beat records the goroutine
// count and the live heap.
type Heartbeat struct {
	tracer Tracer
	stop   chan struct{}
	done   sync.WaitGroup
	once   sync.Once
}

// StartHeartbeat starts beating on tracer. It returns nil when tracing is
// disabled or interval is not positive; Stop accepts nil.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: tracer, stop: make(chan struct{})}
	h.done.Add(1)
	go h.run(interval)
	return h
}

func (h *Heartbeat) run(interval time.Duration) {
	defer h.done.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var mem runtime.MemStats
	for beat := 1; ; beat++ {
		select {
		case <-h.stop:
			return
		case now := <-ticker.C:
			runtime.ReadMemStats(&mem)
			h.tracer.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeCommand,
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
				Extra: map[string]string{
					"uptime":     now.Sub(start).Round(time.Millisecond).String(),
					"goroutines": strconv.Itoa(runtime.NumGoroutine()),
					"heap_kb":    strconv.FormatUint(mem.HeapAlloc/1024, 10),
				},
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. It is idempotent.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	h.done.Wait()
}

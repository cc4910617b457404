package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer writes every event to an io.Writer as it arrives. Writes go
// through a buffer that is flushed after end events and on Flush; the first
// write error is kept and returned by Flush, later events are dropped.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
	err    error
}

// NewStreamTracer creates a StreamTracer; FormatAuto writes text.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{
		dst:    w,
		buf:    bufio.NewWriter(w),
		level:  level,
		format: format,
	}
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := t.buf.Write(data); err != nil {
		t.err = err
		return
	}
	if ev.Kind == KindSpanEnd || ev.Kind == KindHeartbeat {
		t.err = t.buf.Flush()
	}
}

// Flush writes buffered events and reports the first write error.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.err = t.buf.Flush()
	return t.err
}

// Close flushes and closes the writer unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.dst == os.Stderr || t.dst == os.Stdout {
		return nil
	}
	if closer, ok := t.dst.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Level returns the current tracing level.
func (t *StreamTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *StreamTracer) Enabled() bool {
	return t.level > LevelOff
}

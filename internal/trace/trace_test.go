package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeCommand, false},
		{LevelPhase, ScopeSolve, true},
		{LevelPhase, ScopePlacement, false},
		{LevelDetail, ScopePlacement, true},
		{LevelDetail, ScopeCandidate, false},
		{LevelDebug, ScopeCandidate, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s/%s: expected %v, got %v", tc.level, tc.scope, tc.want, got)
		}
	}
	if l, err := ParseLevel(" Detail "); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
}

type jsonLine struct {
	Kind     string            `json:"kind"`
	Name     string            `json:"name"`
	SpanID   uint64            `json:"span_id"`
	ParentID uint64            `json:"parent_id"`
	Job      string            `json:"job"`
	Extra    map[string]string `json:"extra"`
}

func decodeLines(t *testing.T, out string) []jsonLine {
	t.Helper()
	var lines []jsonLine
	for _, raw := range strings.Split(strings.TrimSpace(out), "\n") {
		var ev jsonLine
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
		lines = append(lines, ev)
	}
	return lines
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	span := Begin(tr, ScopeSolve, "greedy", 0)
	span.Point(ScopePlacement, "commit", "dsp4x4", "x", "0", "y", "4")
	span.Point(ScopeCandidate, "reject", "")
	span.WithExtra("cost", "53").End("ok")

	lines := decodeLines(t, buf.String())
	if len(lines) != 3 {
		t.Fatalf("expected 3 events (candidate filtered), got %d:\n%s", len(lines), buf.String())
	}
	ev := lines[1]
	if ev.Kind != "point" || ev.Name != "commit" || ev.ParentID != span.ID() || ev.Extra["y"] != "4" {
		t.Fatalf("unexpected point event: %+v", ev)
	}
	if lines[2].Extra["cost"] != "53" {
		t.Fatalf("end event lacks extra: %+v", lines[2])
	}
}

func TestStartFollowsContext(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithJob(WithTracer(context.Background(), tr), "greedy 8x8")

	outer, ctx := Start(ctx, ScopeCommand, "pipeline")
	inner, _ := Start(ctx, ScopeSolve, "greedy")
	inner.Point(ScopePlacement, "commit", "")
	inner.End("")
	outer.End("")

	lines := decodeLines(t, buf.String())
	if len(lines) != 5 {
		t.Fatalf("got %d events:\n%s", len(lines), buf.String())
	}
	for _, ev := range lines {
		if ev.Job != "greedy 8x8" {
			t.Fatalf("event without job: %+v", ev)
		}
	}
	if lines[1].ParentID != outer.ID() || lines[2].ParentID != inner.ID() {
		t.Fatalf("bad nesting: %+v", lines)
	}
}

func TestFilteredSpanKeepsPoints(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	outer := Begin(tr, ScopeSolve, "sat", 0)
	// ScopeCandidate spans are filtered at LevelDetail.
	inner := Begin(tr, ScopeCandidate, "bound", outer.ID())
	inner.Point(ScopePlacement, "improved", "12 units")
	inner.End("")
	outer.End("")
	if inner.ID() != 0 {
		t.Fatal("filtered span has an id")
	}
	if !strings.Contains(buf.String(), "* improved (12 units)") {
		t.Fatalf("point lost:\n%s", buf.String())
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeCandidate, name, "", 0)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected ring contents: %+v", events)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(buf.String(), "* c") {
		t.Fatalf("dump misses last event: %q", buf.String())
	}

	multi := NewMultiTracer(LevelDebug, NewStreamTracer(&bytes.Buffer{}, LevelDebug, FormatText), ring)
	if multi.Ring() != ring {
		t.Fatal("multi tracer does not expose its ring")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamKeepsFirstError(t *testing.T) {
	tr := NewStreamTracer(failingWriter{}, LevelPhase, FormatText)
	Begin(tr, ScopeSolve, "greedy", 0).End("")
	if err := tr.Flush(); err == nil || err.Error() != "disk full" {
		t.Fatalf("Flush = %v", err)
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	hb := StartHeartbeat(ring, 5*time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	hb.Stop()
	hb.Stop()

	events := ring.Snapshot()
	if len(events) == 0 {
		t.Fatal("no heartbeat")
	}
	if events[0].Kind != KindHeartbeat || events[0].Extra["goroutines"] == "" {
		t.Fatalf("unexpected heartbeat: %+v", events[0])
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat on a disabled tracer")
	}
}

func TestNopSpan(t *testing.T) {
	span := Begin(Nop, ScopeSolve, "greedy", 0)
	if span.ID() != 0 {
		t.Fatalf("nop span must have no id")
	}
	if d := span.WithExtra("k", "v").End(""); d != 0 {
		t.Fatalf("nop span must not measure time")
	}
	span.Point(ScopePlacement, "commit", "")
}

func TestRingNamesSolvesInFlight(t *testing.T) {
	ring := NewRingTracer(2, LevelDetail)
	ctx := WithJob(WithTracer(context.Background(), ring), "sat 8x8")

	cmd, ctx := Start(ctx, ScopeCommand, "pipeline")
	done, _ := Start(ctx, ScopeSolve, "greedy")
	done.End("")
	solve, _ := Start(ctx, ScopeSolve, "sat")
	// pushes both begin events out of the ring
	solve.Point(ScopePlacement, "commit", "")
	solve.Point(ScopePlacement, "commit", "")

	inFlight := ring.InFlight()
	if len(inFlight) != 2 || inFlight[0].SpanID != cmd.ID() || inFlight[1].SpanID != solve.ID() {
		t.Fatalf("unexpected spans in flight: %+v", inFlight)
	}

	var buf bytes.Buffer
	if err := ring.DumpCrash(&buf); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "in flight: command sat 8x8: pipeline\nin flight: solve sat 8x8: sat\n") {
		t.Fatalf("crash dump does not lead with open spans:\n%s", out)
	}
	if strings.Contains(out, "greedy") {
		t.Fatalf("finished solve reported as in flight:\n%s", out)
	}

	solve.End("")
	cmd.End("")
	if n := len(ring.InFlight()); n != 0 {
		t.Fatalf("expected no spans in flight, got %d", n)
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{OutputPath: "run.ndjson"}.Normalize()
	if cfg.Level != LevelPhase || cfg.Format != FormatNDJSON || cfg.RingSize != DefaultRingSize {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	cfg = Config{Level: LevelDebug, Format: FormatNDJSON, RingSize: 8}.Normalize()
	if cfg.Level != LevelDebug || cfg.Format != FormatNDJSON || cfg.RingSize != 8 {
		t.Fatalf("explicit settings overridden: %+v", cfg)
	}
	if cfg := (Config{OutputPath: "-"}).Normalize(); cfg.Format != FormatText {
		t.Fatalf("stderr should trace as text, got %v", cfg.Format)
	}

	tr, err := New(Config{})
	if err != nil || tr.Enabled() {
		t.Fatalf("expected the nop tracer, got %v, %v", tr, err)
	}
}

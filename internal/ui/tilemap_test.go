package ui

import (
	"context"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"mulforge/internal/geom"
	"mulforge/internal/pipeline"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

func TestRenderMapPlain(t *testing.T) {
	lib, err := tile.NewLibrary(
		tile.NewLUT("lut1x1", 1, 1, 1, true, 6),
		tile.NewDSP("dsp4x4", 4, 4, 5, false),
	)
	if err != nil {
		t.Fatal(err)
	}
	p := tiling.Problem{Grid: geom.Grid{W: 5, H: 4}, Library: lib, DSPBudget: 1}
	sol, err := tiling.Greedy{}.Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	out := RenderMap(sol, p.Grid, p.Signed, MapOptions{Plain: true})
	want := "AAAAB\nAAAAC\nAAAAD\nAAAAE\n"
	if out != want {
		t.Fatalf("map:\n%s\nwant:\n%s", out, want)
	}

	cut := RenderMap(sol, p.Grid, p.Signed, MapOptions{Plain: true, MaxWidth: 3})
	if !strings.HasPrefix(cut, "AAA …\n") {
		t.Fatalf("cut map:\n%s", cut)
	}

	withLegend := RenderMap(sol, p.Grid, p.Signed, MapOptions{Plain: true, Legend: true})
	for _, want := range []string{"A tile0_dsp4x4", "B tile1_lut1x1", "total cost 9, 1 DSP blocks"} {
		if !strings.Contains(withLegend, want) {
			t.Errorf("legend lacks %q:\n%s", want, withLegend)
		}
	}
}

func TestRenderMapMarksGaps(t *testing.T) {
	lut := tile.NewLUT("lut2x1", 2, 1, 0, false, 6)
	p, err := lut.Parametrize(0, 0, false, false)
	if err != nil {
		t.Fatal(err)
	}
	sol := tiling.Solution{Entries: []tiling.Placement{
		{Param: p, Anchor: geom.Coord{}},
		{Param: p, Anchor: geom.Coord{X: 1}},
	}}
	out := RenderMap(sol, geom.Grid{W: 3, H: 2}, geom.Signedness{}, MapOptions{Plain: true})
	if out != "A#B\n...\n" {
		t.Fatalf("map:\n%s", out)
	}
}

func TestProgressModel(t *testing.T) {
	events := make(chan pipeline.Event, 8)
	m := NewProgressModel("sweep", []string{"greedy 8x8", "sat 8x8"}, events).(*progressModel)

	m.applyEvent(pipeline.Event{Job: "greedy 8x8", Stage: pipeline.StageSolve, Status: pipeline.StatusWorking})
	if m.items[0].status != "solving" {
		t.Fatalf("status %q", m.items[0].status)
	}
	m.applyEvent(pipeline.Event{Job: "greedy 8x8", Stage: pipeline.StageCheck, Status: pipeline.StatusDone})
	m.applyEvent(pipeline.Event{Job: "unknown", Stage: pipeline.StageSolve, Status: pipeline.StatusDone})
	if got := m.percent(); got != 0.5 {
		t.Fatalf("percent = %g", got)
	}
	m.applyEvent(pipeline.Event{Stage: pipeline.StageSolve, Status: pipeline.StatusWorking})
	if m.stageLabel != "solving" {
		t.Fatalf("stage label %q", m.stageLabel)
	}
	if !strings.Contains(m.View(), "greedy 8x8") {
		t.Fatal("view lacks job name")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		value string
		width int
		want  string
	}{
		{"abcdefghij", 6, "abc..."},
		{"abcdefghij", 4, "a..."},
		{"abcdefghij", 3, "abc"},
		{"abcdefghij", 10, "abcdefghij"},
		{"abcdefghij", 0, "abcdefghij"},
		{"日本語テキスト", 7, "日本..."},
	}
	for _, tc := range cases {
		got := truncate(tc.value, tc.width)
		if got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.value, tc.width, got, tc.want)
		}
		if tc.width > 0 && runewidth.StringWidth(got) > tc.width {
			t.Fatalf("truncate(%q, %d) is %d columns wide", tc.value, tc.width, runewidth.StringWidth(got))
		}
	}
}

package scache

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

func problem(t *testing.T, dspCost float64) tiling.Problem {
	t.Helper()
	lib, err := tile.NewLibrary(
		tile.NewDSP("dsp4x4", 4, 4, dspCost, true),
		tile.NewLUT("lut2x2", 2, 2, 0, false, 6),
	)
	if err != nil {
		t.Fatal(err)
	}
	return tiling.Problem{
		Grid:      geom.Grid{W: 9, H: 7},
		Signed:    geom.Signedness{X: true},
		Library:   lib,
		DSPBudget: 2,
	}
}

func TestKey(t *testing.T) {
	p := problem(t, 5)
	k := Key("greedy", p)
	if k.IsZero() {
		t.Fatal("zero digest")
	}
	if Key("greedy", problem(t, 5)) != k {
		t.Fatal("equal problems hash differently")
	}
	if Key("sat", p) == k {
		t.Fatal("strategy not part of the key")
	}
	if Key("greedy", problem(t, 6)) == k {
		t.Fatal("shape cost not part of the key")
	}
	q := p
	q.DSPBudget = 3
	if Key("greedy", q) == k {
		t.Fatal("budget not part of the key")
	}
	if len(k.String()) != 64 {
		t.Fatalf("hex key %q", k)
	}
}

func TestRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := problem(t, 5)
	sol, err := tiling.Greedy{}.Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("greedy", p)

	if _, ok, err := c.Get(key, p.Library); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, "greedy", p.Grid, sol); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get(key, p.Library)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Cost != sol.Cost || len(got.Entries) != len(sol.Entries) {
		t.Fatalf("cost %g/%d entries, want %g/%d", got.Cost, len(got.Entries), sol.Cost, len(sol.Entries))
	}
	for i := range sol.Entries {
		a, b := sol.Entries[i], got.Entries[i]
		if a.Anchor != b.Anchor || a.Param.String() != b.Param.String() || a.Param.Shape() != b.Param.Shape() {
			t.Fatalf("entry %d: %s, want %s", i, b, a)
		}
	}
	if bag := tiling.Check(got, p); bag.HasErrors() {
		t.Fatalf("restored solution invalid:\n%s", bag)
	}
}

func TestStaleAndSchema(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := problem(t, 5)
	sol, err := tiling.Greedy{}.Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("greedy", p)
	if err := c.Put(key, "greedy", p.Grid, sol); err != nil {
		t.Fatal(err)
	}

	other, err := tile.NewLibrary(tile.NewLUT("lut3x3", 3, 3, 0, false, 6))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Get(key, other); !errors.Is(err, ErrStale) {
		t.Fatalf("err = %v, want ErrStale", err)
	}

	f, err := os.Create(c.pathFor(key))
	if err != nil {
		t.Fatal(err)
	}
	if err := msgpack.NewEncoder(f).Encode(&Payload{Schema: schemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if _, ok, err := c.Get(key, p.Library); ok || err != nil {
		t.Fatalf("future schema: ok=%v err=%v", ok, err)
	}

	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.pathFor(key)); !os.IsNotExist(err) {
		t.Fatalf("entry survived DropAll: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("second DropAll: %v", err)
	}
}

func TestNilCacheAndFailedSolutions(t *testing.T) {
	var c *Cache
	p := problem(t, 5)
	if err := c.Put(Key("greedy", p), "greedy", p.Grid, tiling.Solution{}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(Key("greedy", p), p.Library); ok || err != nil {
		t.Fatal("nil cache hit")
	}

	live, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	failed := tiling.Solution{Cost: math.Inf(1)}
	if err := live.Put(Key("greedy", p), "greedy", p.Grid, failed); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := live.Get(Key("greedy", p), p.Library); ok {
		t.Fatal("failed solution was stored")
	}
}

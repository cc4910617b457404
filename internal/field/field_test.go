package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mulforge/internal/field"
	"mulforge/internal/geom"
	"mulforge/internal/tile"
)

var unsigned = geom.Signedness{}

func nominal(t *testing.T, s *tile.Shape) tile.Parametrization {
	t.Helper()
	p, err := s.Parametrize(0, 0, false, false)
	require.NoError(t, err)
	return p
}

func TestCheckPlacement_IsReadOnly(t *testing.T) {
	f := field.New(geom.Grid{W: 8, H: 8}, unsigned)
	dsp := nominal(t, tile.NewDSP("dsp4x4", 4, 4, 5, false))

	f.Commit(geom.Coord{X: 0, Y: 0}, nominal(t, tile.NewLUT("l", 2, 2, 0, true, 6)))
	before := f.Snapshot()
	state := f.State()

	first := f.CheckPlacement(geom.Coord{X: 2, Y: 0}, dsp)
	second := f.CheckPlacement(geom.Coord{X: 2, Y: 0}, dsp)

	assert.Equal(t, 16, first)
	assert.Equal(t, first, second)
	assert.Equal(t, before, f.Snapshot())
	assert.Equal(t, state, f.State())
}

func TestCheckPlacement_RejectsAnyOverlap(t *testing.T) {
	f := field.New(geom.Grid{W: 8, H: 8}, unsigned)
	lut := tile.NewLUT("lut1x1", 1, 1, 1, true, 6)
	f.Commit(geom.Coord{X: 3, Y: 3}, nominal(t, lut))

	dsp := nominal(t, tile.NewDSP("dsp4x4", 4, 4, 5, false))
	assert.Zero(t, f.CheckPlacement(geom.Coord{X: 0, Y: 0}, dsp), "one owned cell rejects the whole candidate")
	assert.Equal(t, 16, f.CheckPlacement(geom.Coord{X: 4, Y: 4}, dsp))
}

func TestCommit_AdvancesCursorRowMajor(t *testing.T) {
	f := field.New(geom.Grid{W: 4, H: 3}, unsigned)
	lut2 := nominal(t, tile.NewLUT("lut2x2", 2, 2, 0, true, 6))

	st := f.Commit(geom.Coord{X: 0, Y: 0}, lut2)
	assert.Equal(t, geom.Coord{X: 2, Y: 0}, st.Cursor)
	assert.Equal(t, uint32(2), st.ID)

	st = f.Commit(st.Cursor, lut2)
	assert.Equal(t, geom.Coord{X: 0, Y: 2}, st.Cursor, "rows 0 and 1 are full")
	assert.Equal(t, 4, f.Missing())

	st = f.Commit(st.Cursor, lut2)
	assert.Equal(t, geom.Coord{X: 2, Y: 2}, st.Cursor)
	assert.Equal(t, 2, f.Missing(), "the lower half of the tile was clipped off")

	st = f.Commit(st.Cursor, lut2)
	assert.Zero(t, f.Missing())
	assert.Equal(t, geom.Coord{X: 0, Y: 3}, st.Cursor)
}

func TestFreeRuns(t *testing.T) {
	f := field.New(geom.Grid{W: 6, H: 5}, unsigned)
	f.Commit(geom.Coord{X: 4, Y: 0}, nominal(t, tile.NewLUT("l1", 1, 1, 1, true, 6)))
	f.Commit(geom.Coord{X: 0, Y: 3}, nominal(t, tile.NewLUT("l1", 1, 1, 1, true, 6)))

	c := f.State().Cursor
	require.Equal(t, geom.Coord{}, c)
	assert.Equal(t, 4, f.FreeRunRight(c))
	assert.Equal(t, 3, f.FreeRunDown(c))
	assert.Equal(t, 1, f.FreeRunRight(geom.Coord{X: 5, Y: 0}))
	assert.Equal(t, 0, f.FreeRunRight(geom.Coord{X: 4, Y: 0}))
}

func TestEpochs_AreMonotonic(t *testing.T) {
	f := field.New(geom.Grid{W: 8, H: 8}, unsigned)
	lut := nominal(t, tile.NewLUT("lut1x1", 1, 1, 1, true, 6))

	const commits = 10
	for i := 0; i < commits; i++ {
		f.Commit(f.State().Cursor, lut)
	}
	assert.Equal(t, uint32(commits), f.Epoch())
	assert.Equal(t, commits+1, f.DistinctOwners(), "every commit owns its own id next to the base id")
}

func TestReset(t *testing.T) {
	f := field.New(geom.Grid{W: 3, H: 3}, unsigned)
	f.Commit(geom.Coord{}, nominal(t, tile.NewLUT("lut2x2", 2, 2, 0, true, 6)))
	require.Equal(t, 5, f.Missing())

	f.Reset()
	assert.Equal(t, 9, f.Missing())
	assert.Equal(t, field.State{ID: 1}, f.State())
	assert.Equal(t, 1, f.DistinctOwners())
}

func TestCheckPlacement_CountsOnlyClippedCells(t *testing.T) {
	g := geom.Grid{W: 8, H: 8}
	f := field.New(g, unsigned)
	dsp := tile.NewDSP("dsp4x4", 4, 4, 5, true)
	anchor := geom.Coord{X: g.W - 2, Y: g.H - 2}

	p := dsp.TryDSPExpand(anchor, g, unsigned)
	require.True(t, p.Clipped())
	for y := anchor.Y; y < anchor.Y+4; y++ {
		for x := anchor.X; x < anchor.X+4; x++ {
			c := geom.Coord{X: x, Y: y}
			if x >= g.W || y >= g.H {
				assert.False(t, p.Covers(c, anchor, g, unsigned), "cell %s is outside the grid", c)
			}
		}
	}
	assert.Equal(t, 4, f.CheckPlacement(anchor, p))
}

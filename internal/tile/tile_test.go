package tile_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
)

func TestTryDSPExpand_ClipsAtBoundary(t *testing.T) {
	g := geom.Grid{W: 8, H: 8}
	dsp := tile.NewDSP("dsp4x4", 4, 4, 5, false)
	anchor := geom.Coord{X: g.W - 2, Y: g.H - 2}

	p := dsp.TryDSPExpand(anchor, g, geom.Signedness{})
	assert.True(t, p.Clipped())
	assert.False(t, p.Expanded())
	assert.Equal(t, 2, p.Width())
	assert.Equal(t, 2, p.Height())
	assert.Equal(t, 5.0, p.Cost(), "clipping never changes the cost")

	for y := anchor.Y; y < anchor.Y+4; y++ {
		for x := anchor.X; x < anchor.X+4; x++ {
			c := geom.Coord{X: x, Y: y}
			want := x < g.W && y < g.H
			assert.Equal(t, want, p.Covers(c, anchor, g, geom.Signedness{}), "cell %s", c)
		}
	}
	assert.Len(t, p.CoveredCells(anchor, g, geom.Signedness{}), 4)
}

func TestTryDSPExpand_AbsorbsSignBit(t *testing.T) {
	g := geom.Grid{W: 9, H: 9}
	signed := geom.Signedness{X: true, Y: true}
	dsp := tile.NewDSP("dsp4x4", 4, 4, 5, true)

	// footprint ends one column short of the signed MSB column 8
	p := dsp.TryDSPExpand(geom.Coord{X: 4, Y: 0}, g, signed)
	assert.True(t, p.Expanded())
	assert.False(t, p.Clipped())
	assert.Equal(t, 5, p.Width())
	assert.Equal(t, 4, p.Height())
	assert.Equal(t, geom.Signedness{X: true}, p.Signed())
	assert.Equal(t, 5.0, p.Cost())

	// no sign extension without the capability
	plain := tile.NewDSP("dsp4x4", 4, 4, 5, false).TryDSPExpand(geom.Coord{X: 4, Y: 0}, g, signed)
	assert.False(t, plain.Expanded())
	assert.Equal(t, 4, plain.Width())
	assert.False(t, plain.Signed().X, "footprint does not reach the MSB column")
}

func TestCovers_UnsignedShapeSkipsSignedEdge(t *testing.T) {
	g := geom.Grid{W: 4, H: 4}
	signed := geom.Signedness{Y: true}
	lut := tile.NewLUT("lut2x2", 2, 2, 0, false, 6)
	anchor := geom.Coord{X: 0, Y: 2}

	p := lut.TryDSPExpand(anchor, g, signed)
	assert.True(t, p.Covers(geom.Coord{X: 0, Y: 2}, anchor, g, signed))
	assert.False(t, p.Covers(geom.Coord{X: 0, Y: 3}, anchor, g, signed), "MSB row of a signed operand")
	assert.Len(t, p.CoveredCells(anchor, g, signed), 2)

	_, err := lut.Parametrize(0, 0, false, true)
	assert.Error(t, err)
}

func TestMaskedLUT(t *testing.T) {
	s, err := tile.NewMaskedLUT("lutL", []string{
		"x.",
		"xx",
	}, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Area())
	assert.Equal(t, 1.0, s.Efficiency())

	g := geom.Grid{W: 4, H: 4}
	p, err := s.Parametrize(0, 0, false, false)
	require.NoError(t, err)
	at := geom.Coord{X: 1, Y: 1}
	assert.Equal(t, []geom.Coord{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}},
		p.CoveredCells(at, g, geom.Signedness{}))

	_, err = tile.NewMaskedLUT("bad", []string{"x", "xx"}, 3, false)
	assert.Error(t, err)
	_, err = tile.NewMaskedLUT("empty", []string{".."}, 3, false)
	assert.Error(t, err)
	_, err = tile.NewMaskedLUT("nocost", []string{"x"}, 0, false)
	assert.Error(t, err)
}

func TestVarLen(t *testing.T) {
	v := tile.NewVarLen("v2xk", tile.Vertical, 2, 8)
	assert.Equal(t, tile.Unbounded, v.Height())
	assert.Equal(t, 2, v.Width())

	p, err := v.Parametrize(2, 5, false, false)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Length())
	assert.Equal(t, 10, p.Area())
	assert.Equal(t, 6.0, p.Cost())

	_, err = v.Parametrize(2, 9, false, false)
	assert.Error(t, err)

	g := geom.Grid{W: 6, H: 6}
	clipped := v.TryDSPExpand(geom.Coord{X: 0, Y: 2}, g, geom.Signedness{})
	assert.True(t, clipped.Clipped())
	assert.Equal(t, 4, clipped.Length())
}

func TestLUTCost(t *testing.T) {
	cases := []struct {
		w, h, inputs int
		want         float64
	}{
		{1, 1, 6, 1},
		{2, 2, 6, 4},
		{3, 3, 6, 6},
		{1, 5, 6, 5},
		{4, 4, 6, 32},
		{3, 3, 4, 24},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tile.LUTCost(tc.w, tc.h, tc.inputs), "%dx%d/%d", tc.w, tc.h, tc.inputs)
	}
}

func TestLibrary_Ordering(t *testing.T) {
	lib, err := tile.NewLibrary(
		tile.NewLUT("lut3x3", 3, 3, 0, false, 6),
		tile.NewDSP("dsp3x3", 3, 3, 6, false),
		tile.NewDSP("dsp4x4", 4, 4, 5, false),
		tile.NewLUT("lut2x2", 2, 2, 0, false, 6),
		tile.NewVarLen("vkx2", tile.Horizontal, 2, 4),
	)
	require.NoError(t, err)

	var names []string
	for _, s := range lib.General() {
		names = append(names, s.Name())
	}
	// dsp4x4 3.2, then the 1.5 tie broken DSP first, then lut2x2 and the
	// fallback at 1.0 broken by area
	assert.Equal(t, []string{"dsp4x4", "dsp3x3", "lut3x3", "lut2x2", tile.FallbackName}, names)
	require.NotNil(t, lib.Fallback())

	h := lib.Horizontal()
	require.Len(t, h, 3)
	for i, want := range []int{2, 3, 4} {
		assert.Equal(t, want, h[i].Length())
	}
	assert.Empty(t, lib.Vertical())

	types := lib.Types()
	assert.Len(t, types, 6)
	assert.Equal(t, "vkx2", types[5].Name())
	s, ok := lib.Lookup("dsp3x3")
	assert.True(t, ok)
	assert.Same(t, types[1], s)
}

func TestLibrary_Duplicates(t *testing.T) {
	_, err := tile.NewLibrary(
		tile.NewLUT("a", 1, 2, 0, false, 6),
		tile.NewLUT("a", 2, 1, 0, false, 6),
	)
	assert.True(t, errors.Is(err, tile.ErrDuplicateShape))

	_, err = tile.NewLibrary(tile.NewLUT(tile.FallbackName, 2, 2, 0, false, 6))
	assert.True(t, errors.Is(err, tile.ErrDuplicateShape), "the fallback name is reserved")
}

func TestLowerBound(t *testing.T) {
	lib, err := tile.NewLibrary(tile.NewVarLen("v2xk", tile.Vertical, 3, 6))
	require.NoError(t, err)
	pool := lib.Vertical()

	cases := map[int]int{1: 3, 3: 3, 5: 5, 6: 6, 9: 6}
	for need, want := range cases {
		p, ok := tile.LowerBound(pool, need)
		require.True(t, ok)
		assert.Equal(t, want, p.Length(), "need %d", need)
	}
	_, ok := tile.LowerBound(nil, 3)
	assert.False(t, ok)
}

func TestSupertile(t *testing.T) {
	a := geom.Rect{W: 2, H: 3}
	b := geom.Rect{Min: geom.Coord{X: 2, Y: 1}, W: 3, H: 2}
	st, err := tile.NewSuper("pair", a, b, 9)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Width())
	assert.Equal(t, 3, st.Height())
	assert.Equal(t, 12, st.Area())
	assert.Equal(t, 2, st.DSPCount())

	origin := geom.Coord{X: 4, Y: 6}
	at, ok := tile.MatchSuper(st, b.Translate(origin), a.Translate(origin))
	require.True(t, ok, "component order does not matter")
	assert.Equal(t, origin, at)

	_, ok = tile.MatchSuper(st, a.Translate(origin), b.Translate(geom.Coord{X: 5, Y: 6}))
	assert.False(t, ok)

	p, err := st.Parametrize(0, 0, false, false)
	require.NoError(t, err)
	g := geom.Grid{W: 16, H: 16}
	assert.Len(t, p.CoveredCells(origin, g, geom.Signedness{}), 12)
	assert.False(t, p.Covers(geom.Coord{X: 2, Y: 0}.Add(origin), origin, g, geom.Signedness{}), "gap of the bounding box")
	assert.Equal(t, 9, p.OutputBits())

	_, err = tile.NewSuper("overlap", a, geom.Rect{Min: geom.Coord{X: 1}, W: 2, H: 2}, 9)
	assert.Error(t, err)
	_, err = tile.NewSuper("offset", geom.Rect{Min: geom.Coord{X: 1}, W: 1, H: 1}, geom.Rect{Min: geom.Coord{X: 2}, W: 1, H: 1}, 1)
	assert.Error(t, err)
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

const glyphs = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	glyphFree    = '.'
	glyphOverlap = '#'
)

// MapOptions controls RenderMap.
type MapOptions struct {
	Plain    bool // no colours
	Legend   bool
	MaxWidth int // cells per row before the map is cut; 0 means no limit
}

var kindColors = map[tile.Kind][]lipgloss.Color{
	tile.KindDSP:    {"1", "9"},
	tile.KindSuper:  {"5", "13"},
	tile.KindLUT:    {"4", "12", "6", "14"},
	tile.KindVarLen: {"2", "10"},
}

// RenderMap draws the tiling of g as one glyph per cell, row y from the top
// and column x from the left. Each entry gets its own glyph; free cells are
// '.' and cells claimed twice are '#'.
func RenderMap(sol tiling.Solution, g geom.Grid, signed geom.Signedness, opts MapOptions) string {
	owner := make([]int, g.Cells())
	for i := range owner {
		owner[i] = -1
	}
	for i, e := range sol.Entries {
		for _, c := range e.Param.CoveredCells(e.Anchor, g, signed) {
			idx := g.Index(c)
			if owner[idx] == -1 {
				owner[idx] = i
			} else {
				owner[idx] = -2
			}
		}
	}

	width := g.W
	cut := opts.MaxWidth > 0 && width > opts.MaxWidth
	if cut {
		width = opts.MaxWidth
	}

	var b strings.Builder
	for y := 0; y < g.H; y++ {
		for x := 0; x < width; x++ {
			b.WriteString(cellGlyph(sol, owner[g.Index(geom.Coord{X: x, Y: y})], opts.Plain))
		}
		if cut {
			b.WriteString(" …")
		}
		b.WriteByte('\n')
	}
	if opts.Legend {
		b.WriteByte('\n')
		b.WriteString(legend(sol, opts.Plain))
	}
	return b.String()
}

func cellGlyph(sol tiling.Solution, owner int, plain bool) string {
	switch owner {
	case -1:
		return string(glyphFree)
	case -2:
		if plain {
			return string(glyphOverlap)
		}
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render(string(glyphOverlap))
	}
	g := string(glyphs[owner%len(glyphs)])
	if plain {
		return g
	}
	return entryStyle(sol.Entries[owner], owner).Render(g)
}

func entryStyle(p tiling.Placement, i int) lipgloss.Style {
	palette := kindColors[p.Param.Shape().Kind()]
	if len(palette) == 0 {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(palette[i%len(palette)])
}

func legend(sol tiling.Solution, plain bool) string {
	inst := sol.Instances()
	nameWidth := 0
	for _, in := range inst {
		nameWidth = max(nameWidth, runewidth.StringWidth(in.Name))
	}
	var b strings.Builder
	for i, in := range inst {
		g := string(glyphs[i%len(glyphs)])
		if !plain {
			g = entryStyle(sol.Entries[i], i).Render(g)
		}
		fmt.Fprintf(&b, "%s %s %-10s weight %-3d cost %g\n",
			g, runewidth.FillRight(in.Name, nameWidth), sol.Entries[i].Footprint(), in.Weight, in.Cost)
	}
	fmt.Fprintf(&b, "total cost %g, %d DSP blocks\n", sol.Cost, sol.DSPCount())
	return b.String()
}

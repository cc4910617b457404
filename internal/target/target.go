// Package target describes the tiles an FPGA offers to a multiplier and turns
// that description into a tile library.
package target

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

// Names of the variable-length shapes.
const (
	varLenVertical   = "lut2xk"
	varLenHorizontal = "lutkx2"
)

var (
	// ErrTargetSectionMissing indicates that [target] is missing.
	ErrTargetSectionMissing = errors.New("missing [target]")
	// ErrTargetNameMissing indicates that [target].name is missing or blank.
	ErrTargetNameMissing = errors.New("missing [target].name")
	// ErrNoTiles indicates a target without any tile.
	ErrNoTiles = errors.New("target declares no tiles")
)

// Target is the capability description of one device family.
type Target struct {
	Name      string
	LUTInputs int

	DSPs       []DSP
	LUTs       []LUT
	VarLen     *VariableLength // nil disables variable-length tiles
	Supertiles []Supertile
	Defaults   Defaults
}

// DSP is a hard multiplier block.
type DSP struct {
	Name       string  `toml:"name"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Cost       float64 `toml:"cost"`
	SignExtend bool    `toml:"sign_extend"`
}

// LUT is a soft multiplier. A non-empty Mask gives an irregular shape, one
// string per row with 'x' for a covered cell.
type LUT struct {
	Name   string   `toml:"name"`
	Width  int      `toml:"width"`
	Height int      `toml:"height"`
	Cost   float64  `toml:"cost,omitempty"`
	Signed bool     `toml:"signed"`
	Mask   []string `toml:"mask,omitempty"`
}

// VariableLength enables the 2xk and kx2 carry-chain multipliers.
type VariableLength struct {
	Min        int  `toml:"min"`
	Max        int  `toml:"max"`
	Vertical   bool `toml:"vertical"`
	Horizontal bool `toml:"horizontal"`
}

// Supertile is a pair of DSP blocks, each part given as [x, y, w, h].
type Supertile struct {
	Name string  `toml:"name"`
	Cost float64 `toml:"cost"`
	A    []int   `toml:"a"`
	B    []int   `toml:"b"`
}

// Defaults are the problem settings used when the command line gives none.
type Defaults struct {
	DSPBudget           int     `toml:"dsp_budget"`
	OccupationThreshold float64 `toml:"occupation_threshold"`
	CostBound           float64 `toml:"cost_bound,omitempty"`
	VariableLength      bool    `toml:"variable_length"`
	SuperTiles          bool    `toml:"supertiles"`
}

type file struct {
	Target struct {
		Name      string `toml:"name"`
		LUTInputs int    `toml:"lut_inputs"`
	} `toml:"target"`
	DSP            []DSP           `toml:"dsp"`
	LUT            []LUT           `toml:"lut"`
	VariableLength *VariableLength `toml:"variable_length,omitempty"`
	Supertile      []Supertile     `toml:"supertile"`
	Defaults       Defaults        `toml:"defaults"`
}

// Load reads a target file.
func Load(path string) (*Target, error) {
	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	t, err := fromFile(&f, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a target from TOML text.
func Parse(data string) (*Target, error) {
	var f file
	meta, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return fromFile(&f, meta)
}

func fromFile(f *file, meta toml.MetaData) (*Target, error) {
	if !meta.IsDefined("target") {
		return nil, ErrTargetSectionMissing
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	t := &Target{
		Name:       normName(f.Target.Name),
		LUTInputs:  f.Target.LUTInputs,
		DSPs:       f.DSP,
		LUTs:       f.LUT,
		VarLen:     f.VariableLength,
		Supertiles: f.Supertile,
		Defaults:   f.Defaults,
	}
	if t.Name == "" {
		return nil, ErrTargetNameMissing
	}
	if !meta.IsDefined("target", "lut_inputs") {
		t.LUTInputs = tile.DefaultLUTInputs
	}
	if !meta.IsDefined("defaults", "dsp_budget") {
		t.Defaults.DSPBudget = tiling.Unlimited
	}
	if !meta.IsDefined("defaults", "occupation_threshold") {
		t.Defaults.OccupationThreshold = tiling.DefaultOccupationThreshold
	}
	if t.VarLen != nil && !meta.IsDefined("variable_length", "vertical") && !meta.IsDefined("variable_length", "horizontal") {
		t.VarLen.Vertical, t.VarLen.Horizontal = true, true
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Write encodes t in the format Load reads.
func Write(w io.Writer, t *Target) error {
	var f file
	f.Target.Name = t.Name
	f.Target.LUTInputs = t.LUTInputs
	f.DSP, f.LUT, f.VariableLength, f.Supertile, f.Defaults = t.DSPs, t.LUTs, t.VarLen, t.Supertiles, t.Defaults
	return toml.NewEncoder(w).Encode(f)
}

func normName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Validate checks ranges and name uniqueness. Tile names are compared after
// NFC normalisation.
func (t *Target) Validate() error {
	if t.LUTInputs < 1 {
		return fmt.Errorf("[target].lut_inputs must be positive, got %d", t.LUTInputs)
	}
	if len(t.DSPs)+len(t.LUTs) == 0 && t.VarLen == nil {
		return ErrNoTiles
	}
	seen := make(map[string]string)
	claim := func(section, name string) error {
		n := normName(name)
		if n == "" {
			return fmt.Errorf("[%s]: tile without a name", section)
		}
		if prev, ok := seen[n]; ok {
			return fmt.Errorf("[%s]: tile %q already declared in [%s]", section, n, prev)
		}
		seen[n] = section
		return nil
	}
	for _, d := range t.DSPs {
		if err := claim("dsp", d.Name); err != nil {
			return err
		}
		if d.Width < 1 || d.Height < 1 || d.Cost <= 0 {
			return fmt.Errorf("[dsp] %s: width, height and cost must be positive", d.Name)
		}
	}
	for _, l := range t.LUTs {
		if err := claim("lut", l.Name); err != nil {
			return err
		}
		if len(l.Mask) > 0 {
			if l.Cost <= 0 {
				return fmt.Errorf("[lut] %s: a masked LUT needs an explicit cost", l.Name)
			}
			continue
		}
		if l.Width < 1 || l.Height < 1 || l.Cost < 0 {
			return fmt.Errorf("[lut] %s: invalid size %dx%d or cost %g", l.Name, l.Width, l.Height, l.Cost)
		}
	}
	if v := t.VarLen; v != nil {
		for _, name := range []string{varLenVertical, varLenHorizontal} {
			if err := claim("variable_length", name); err != nil {
				return err
			}
		}
		if v.Min < 1 || v.Max < v.Min {
			return fmt.Errorf("[variable_length]: invalid length range [%d, %d]", v.Min, v.Max)
		}
		if !v.Vertical && !v.Horizontal {
			return errors.New("[variable_length]: neither orientation enabled")
		}
	}
	for _, s := range t.Supertiles {
		if err := claim("supertile", s.Name); err != nil {
			return err
		}
		if len(s.A) != 4 || len(s.B) != 4 {
			return fmt.Errorf("[supertile] %s: parts are [x, y, w, h]", s.Name)
		}
		if s.Cost <= 0 {
			return fmt.Errorf("[supertile] %s: cost must be positive", s.Name)
		}
	}
	d := t.Defaults
	if d.DSPBudget < tiling.Unlimited {
		return fmt.Errorf("[defaults].dsp_budget must be -1 or more, got %d", d.DSPBudget)
	}
	if d.OccupationThreshold < 0 || d.OccupationThreshold > 1 {
		return fmt.Errorf("[defaults].occupation_threshold must be in [0, 1], got %g", d.OccupationThreshold)
	}
	if d.CostBound < 0 {
		return fmt.Errorf("[defaults].cost_bound must not be negative, got %g", d.CostBound)
	}
	return nil
}

// Build creates the tile library of t.
func (t *Target) Build() (*tile.Library, error) {
	var shapes []*tile.Shape
	for _, d := range t.DSPs {
		shapes = append(shapes, tile.NewDSP(normName(d.Name), d.Width, d.Height, d.Cost, d.SignExtend))
	}
	for _, l := range t.LUTs {
		if len(l.Mask) > 0 {
			s, err := tile.NewMaskedLUT(normName(l.Name), l.Mask, l.Cost, l.Signed)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.Name, err)
			}
			shapes = append(shapes, s)
			continue
		}
		shapes = append(shapes, tile.NewLUT(normName(l.Name), l.Width, l.Height, l.Cost, l.Signed, t.LUTInputs))
	}
	if v := t.VarLen; v != nil {
		if v.Vertical {
			shapes = append(shapes, tile.NewVarLen(varLenVertical, tile.Vertical, v.Min, v.Max))
		}
		if v.Horizontal {
			shapes = append(shapes, tile.NewVarLen(varLenHorizontal, tile.Horizontal, v.Min, v.Max))
		}
	}
	for _, s := range t.Supertiles {
		st, err := tile.NewSuper(normName(s.Name), rect(s.A), rect(s.B), s.Cost)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		shapes = append(shapes, st)
	}
	lib, err := tile.NewLibrary(shapes...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}
	return lib, nil
}

func rect(v []int) geom.Rect {
	return geom.Rect{Min: geom.Coord{X: v[0], Y: v[1]}, W: v[2], H: v[3]}
}

// Problem returns the problem of a g multiplier on t with the target's
// defaults.
func (t *Target) Problem(lib *tile.Library, g geom.Grid, signed geom.Signedness) tiling.Problem {
	return tiling.Problem{
		Grid:                g,
		Signed:              signed,
		Library:             lib,
		DSPBudget:           t.Defaults.DSPBudget,
		OccupationThreshold: t.Defaults.OccupationThreshold,
		CostBound:           t.Defaults.CostBound,
		VariableLength:      t.Defaults.VariableLength && t.VarLen != nil,
		SuperTiles:          t.Defaults.SuperTiles,
	}
}

package target

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mulforge/internal/geom"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

const small = `
[target]
name = "small"
lut_inputs = 4

[[dsp]]
name = "dsp4x4"
width = 4
height = 4
cost = 5

[[lut]]
name = "lut1x1"
width = 1
height = 1
signed = true

[[lut]]
name = "lutL"
mask = ["x.", "xx"]
cost = 3

[variable_length]
min = 2
max = 8
horizontal = true

[defaults]
dsp_budget = 0
variable_length = true
`

func TestParse(t *testing.T) {
	tg, err := Parse(small)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tg.Name != "small" || tg.LUTInputs != 4 {
		t.Fatalf("target = %q/%d", tg.Name, tg.LUTInputs)
	}
	if tg.Defaults.DSPBudget != 0 {
		t.Fatalf("explicit zero budget lost: %d", tg.Defaults.DSPBudget)
	}
	if tg.VarLen == nil || tg.VarLen.Vertical || !tg.VarLen.Horizontal {
		t.Fatalf("variable length = %+v", tg.VarLen)
	}

	lib, err := tg.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := lib.Lookup("lutL"); !ok {
		t.Fatal("masked LUT missing")
	}
	if len(lib.Horizontal()) != 7 || len(lib.Vertical()) != 0 {
		t.Fatalf("pools: %d horizontal, %d vertical", len(lib.Horizontal()), len(lib.Vertical()))
	}

	p := tg.Problem(lib, geom.Grid{W: 8, H: 8}, geom.Signedness{})
	if p.DSPBudget != 0 || !p.VariableLength || p.OccupationThreshold != tiling.DefaultOccupationThreshold {
		t.Fatalf("problem = %s", p)
	}
}

func TestParseDefaultsWhenAbsent(t *testing.T) {
	tg, err := Parse("[target]\nname = \"bare\"\n[[lut]]\nname = \"l\"\nwidth = 2\nheight = 2\n")
	if err != nil {
		t.Fatal(err)
	}
	if tg.Defaults.DSPBudget != tiling.Unlimited {
		t.Fatalf("budget = %d, want unlimited", tg.Defaults.DSPBudget)
	}
	if tg.LUTInputs != tile.DefaultLUTInputs {
		t.Fatalf("lut inputs = %d", tg.LUTInputs)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
		sub  string
	}{
		{name: "no target", text: "[[lut]]\nname = \"a\"\nwidth = 1\nheight = 1\n", want: ErrTargetSectionMissing},
		{name: "no name", text: "[target]\nlut_inputs = 6\n", want: ErrTargetNameMissing},
		{name: "no tiles", text: "[target]\nname = \"x\"\n", want: ErrNoTiles},
		{name: "unknown key", text: "[target]\nname = \"x\"\ncolour = 1\n", sub: "unknown key"},
		{name: "bad toml", text: "[target\n", sub: "failed to parse TOML"},
		{
			name: "duplicate after normalisation",
			text: "[target]\nname = \"x\"\n[[lut]]\nname = \"caf\u00e9\"\nwidth = 1\nheight = 1\n[[dsp]]\nname = \"cafe\u0301\"\nwidth = 2\nheight = 2\ncost = 1\n",
			sub:  "already declared",
		},
		{name: "masked without cost", text: "[target]\nname = \"x\"\n[[lut]]\nname = \"m\"\nmask = [\"x\"]\n", sub: "explicit cost"},
		{name: "bad range", text: "[target]\nname = \"x\"\n[variable_length]\nmin = 5\nmax = 2\n", sub: "length range"},
		{name: "threshold", text: "[target]\nname = \"x\"\n[[lut]]\nname = \"l\"\nwidth = 1\nheight = 1\n[defaults]\noccupation_threshold = 2.0\n", sub: "occupation_threshold"},
		{name: "supertile parts", text: "[target]\nname = \"x\"\n[[lut]]\nname = \"l\"\nwidth = 1\nheight = 1\n[[supertile]]\nname = \"s\"\ncost = 1\na = [0, 0, 1]\nb = [1, 0, 1, 1]\n", sub: "[x, y, w, h]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.sub != "" && !strings.Contains(err.Error(), tt.sub) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.sub)
			}
		})
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Default()); err != nil {
		t.Fatalf("write: %v", err)
	}
	path := filepath.Join(t.TempDir(), "generic.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	tg, err := Load(path)
	if err != nil {
		t.Fatalf("load:\n%s\n%v", buf.String(), err)
	}
	if tg.Name != "generic" || len(tg.DSPs) != 2 || len(tg.LUTs) != 5 || len(tg.Supertiles) != 2 {
		t.Fatalf("round trip lost data: %+v", tg)
	}
	if tg.Defaults.DSPBudget != tiling.Unlimited {
		t.Fatalf("budget = %d", tg.Defaults.DSPBudget)
	}

	lib, err := tg.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := lib.General()[0].Name(); got != "dsp17x24" && got != "dsp24x17" {
		t.Fatalf("most efficient shape = %s", got)
	}
	if len(lib.Supertiles()) != 2 || lib.Fallback() == nil {
		t.Fatal("supertiles or fallback missing")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "nope.toml") {
		t.Fatalf("err = %v", err)
	}
}

package scache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mulforge/internal/tiling"
)

// Digest is a fixed 256-bit key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// Key hashes everything a solve depends on: the strategy name, the problem
// settings and every shape of the library with its cost characteristics.
func Key(strategy string, p tiling.Problem) Digest {
	h := sha256.New()
	describe(h, strategy, p)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func describe(w io.Writer, strategy string, p tiling.Problem) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	fmt.Fprintf(w, "v%d\nstrategy %s\n", schemaVersion, strategy)
	fmt.Fprintf(w, "grid %d %d signed %t %t\n", p.Grid.W, p.Grid.H, p.Signed.X, p.Signed.Y)
	fmt.Fprintf(w, "dsp %d occ %s bound %s varlen %t super %t\n",
		p.DSPBudget, f(p.OccupationThreshold), f(p.CostBound), p.VariableLength, p.SuperTiles)
	if p.Library == nil {
		return
	}
	for _, s := range p.Library.Types() {
		sx := s.SignedCapable()
		lo, hi := s.LenRange()
		fmt.Fprintf(w, "shape %q %s %d %d %s %d %d signed %t %t ext %t dsps %d cost %s area %d\n",
			s.Name(), s.Kind(), s.Width(), s.Height(), s.Orientation(), lo, hi,
			sx.X, sx.Y, s.SignExtends(), s.DSPCount(), f(s.Cost()), s.Area())
		if m := s.Mask(); m != nil {
			fmt.Fprintf(w, "mask %s\n", strings.Join(m, "/"))
		}
		for _, r := range s.Parts() {
			fmt.Fprintf(w, "part %d %d %d %d\n", r.Min.X, r.Min.Y, r.W, r.H)
		}
	}
}

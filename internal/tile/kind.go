package tile

import "fmt"

// Kind is the closed set of primitive multiplier variants a Shape can be.
type Kind uint8

const (
	// KindDSP is a fixed-size hard multiplier block.
	KindDSP Kind = iota + 1
	// KindLUT is a small fixed-size multiplier built from LUTs, optionally with an irregular footprint.
	KindLUT
	// KindVarLen is a 2xk or kx2 LUT multiplier whose long side is chosen at placement time.
	KindVarLen
	// KindSuper is two DSP blocks merged into one composite primitive.
	KindSuper
)

func (k Kind) String() string {
	switch k {
	case KindDSP:
		return "dsp"
	case KindLUT:
		return "lut"
	case KindVarLen:
		return "varlen"
	case KindSuper:
		return "super"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Orientation tells which side of a variable-length tile varies.
type Orientation uint8

const (
	// OrientNone is used by fixed shapes.
	OrientNone Orientation = iota
	// Vertical is a 2xk tile: two columns wide, k rows tall.
	Vertical
	// Horizontal is a kx2 tile: k columns wide, two rows tall.
	Horizontal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "2xk"
	case Horizontal:
		return "kx2"
	default:
		return "fixed"
	}
}

// Unbounded marks the varying side of a variable-length shape.
const Unbounded = -1

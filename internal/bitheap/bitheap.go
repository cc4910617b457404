// Package bitheap describes the weighted-bit compressor that consumes the
// numeric output of every placed tile, and wires solutions into it.
//
// The compressor itself lives outside this module; Recorder is an in-memory
// stand-in that keeps the registrations and column heights.
package bitheap

import (
	"errors"
	"fmt"

	"mulforge/internal/tiling"
)

var (
	// ErrCompressionStarted is returned when bits are added after
	// StartCompression.
	ErrCompressionStarted = errors.New("bitheap: compression already started")
	// ErrNotCompressed is returned by SumBits before StartCompression.
	ErrNotCompressed = errors.New("bitheap: compression not started")
)

// BitHeap accepts bit vectors at a weight and produces their sum.
type BitHeap interface {
	AddSignedBitVector(weight int, signal string, width int) error
	AddUnsignedBitVector(weight int, signal string, width int) error
	SubtractSignedBitVector(weight int, signal string, width int) error
	StartCompression() error
	// SumBits names the result bits of weights lo..hi inclusive.
	SumBits(lo, hi int) ([]string, error)
}

// Wire registers the output of every entry of sol at weight x+y of its
// anchor, under the entry's instance name. Outputs of tiles that handle a
// signed operand are added as signed vectors. With negate set the product is
// subtracted instead; unsigned outputs are then zero-extended by one bit.
func Wire(h BitHeap, sol tiling.Solution, negate bool) error {
	for _, in := range sol.Instances() {
		var err error
		switch {
		case negate && in.Signed.Any():
			err = h.SubtractSignedBitVector(in.Weight, in.Name, in.OutputBits)
		case negate:
			err = h.SubtractSignedBitVector(in.Weight, in.Name, in.OutputBits+1)
		case in.Signed.Any():
			err = h.AddSignedBitVector(in.Weight, in.Name, in.OutputBits)
		default:
			err = h.AddUnsignedBitVector(in.Weight, in.Name, in.OutputBits)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", in.Name, err)
		}
	}
	return nil
}

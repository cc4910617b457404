package bitheap

import (
	"fmt"
	"strings"
)

// Op is the kind of a registration.
type Op uint8

const (
	OpAddUnsigned Op = iota
	OpAddSigned
	OpSubtractSigned
)

func (o Op) String() string {
	switch o {
	case OpAddUnsigned:
		return "add"
	case OpAddSigned:
		return "add-signed"
	case OpSubtractSigned:
		return "sub-signed"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Registration is one recorded bit vector.
type Registration struct {
	Op     Op
	Weight int
	Signal string
	Width  int
}

func (r Registration) String() string {
	return fmt.Sprintf("%s %s[%d] @%d", r.Op, r.Signal, r.Width, r.Weight)
}

// Recorder is a BitHeap that records what it is given. Column heights count
// the vector bits only; sign-extension constants are not modelled.
type Recorder struct {
	Name string

	regs       []Registration
	heights    []int
	compressed bool
}

// NewRecorder returns an empty recorder.
func NewRecorder(name string) *Recorder {
	return &Recorder{Name: name}
}

func (r *Recorder) add(op Op, weight int, signal string, width int) error {
	if r.compressed {
		return ErrCompressionStarted
	}
	if weight < 0 || width <= 0 {
		return fmt.Errorf("bitheap: invalid vector %s[%d] at weight %d", signal, width, weight)
	}
	r.regs = append(r.regs, Registration{Op: op, Weight: weight, Signal: signal, Width: width})
	if top := weight + width; top > len(r.heights) {
		r.heights = append(r.heights, make([]int, top-len(r.heights))...)
	}
	for i := weight; i < weight+width; i++ {
		r.heights[i]++
	}
	return nil
}

func (r *Recorder) AddSignedBitVector(weight int, signal string, width int) error {
	return r.add(OpAddSigned, weight, signal, width)
}

func (r *Recorder) AddUnsignedBitVector(weight int, signal string, width int) error {
	return r.add(OpAddUnsigned, weight, signal, width)
}

func (r *Recorder) SubtractSignedBitVector(weight int, signal string, width int) error {
	return r.add(OpSubtractSigned, weight, signal, width)
}

func (r *Recorder) StartCompression() error {
	if r.compressed {
		return ErrCompressionStarted
	}
	r.compressed = true
	return nil
}

func (r *Recorder) SumBits(lo, hi int) ([]string, error) {
	if !r.compressed {
		return nil, ErrNotCompressed
	}
	if lo < 0 || hi < lo || hi >= len(r.heights) {
		return nil, fmt.Errorf("bitheap: sum range [%d, %d] outside [0, %d)", lo, hi, len(r.heights))
	}
	name := r.Name
	if name == "" {
		name = "bh"
	}
	out := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, fmt.Sprintf("%s_sum_%d", name, i))
	}
	return out, nil
}

// Registrations returns the recorded vectors in order.
func (r *Recorder) Registrations() []Registration { return r.regs }

// Heights returns the number of bits per weight.
func (r *Recorder) Heights() []int { return r.heights }

// MaxHeight returns the tallest column.
func (r *Recorder) MaxHeight() int {
	m := 0
	for _, h := range r.heights {
		m = max(m, h)
	}
	return m
}

// Width returns one past the highest weight holding a bit.
func (r *Recorder) Width() int { return len(r.heights) }

func (r *Recorder) String() string {
	var b strings.Builder
	for _, reg := range r.regs {
		b.WriteString(reg.String())
		b.WriteByte('\n')
	}
	return b.String()
}

package tile

// DefaultLUTInputs is the LUT input count assumed when a target does not say.
const DefaultLUTInputs = 6

// ProductBits returns the width of an unsigned w x h product. A 1-bit operand
// only gates the other one, so no carry bit is produced.
func ProductBits(w, h int) int {
	if w <= 0 || h <= 0 {
		return 0
	}
	if min(w, h) == 1 {
		return w + h - 1
	}
	return w + h
}

// LUTCost estimates the LUT count of a table-based w x h multiplier: one LUT per
// output bit while all operand bits fit a single LUT, doubling for every extra input.
func LUTCost(w, h, lutInputs int) float64 {
	if lutInputs <= 0 {
		lutInputs = DefaultLUTInputs
	}
	out := ProductBits(w, h)
	if out == 0 {
		return 0
	}
	inputs := w + h
	per := 1.0
	for i := lutInputs; i < inputs; i++ {
		per *= 2
	}
	return float64(out) * per
}

// VarLenCost is the LUT count of a 2xk carry-chain multiplier.
func VarLenCost(k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(k + 1)
}

package diag

// Severity ranks a finding about a solution.
type Severity uint8

const (
	// SevInfo findings describe a solution without judging it, such as
	// supertile savings.
	SevInfo Severity = iota
	// SevWarning findings leave the solution usable, like a recorded cost
	// that drifts from the sum of its entries.
	SevWarning
	// SevError findings make the solution unusable: overlaps, holes, tiles
	// outside the grid, a broken DSP budget.
	SevError
)

// Rejects reports whether a finding of this severity invalidates the
// solution it was raised on.
func (s Severity) Rejects() bool { return s >= SevError }

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

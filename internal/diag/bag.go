package diag

import (
	"sort"
	"strings"
)

type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag that keeps at most max diagnostics.
func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add appends d unless the limit is reached. It reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether at least one finding rejects the solution.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity.Rejects() {
			return true
		}
	}
	return false
}

// HasWarnings reports whether at least one diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the diagnostics. The slice aliases the bag; do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Count returns how many diagnostics carry code.
func (b *Bag) Count(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

// Merge appends the diagnostics of other, raising the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by row, column, severity (desc) and code for a
// deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.Min.Y != dj.Primary.Min.Y {
			return di.Primary.Min.Y < dj.Primary.Min.Y
		}
		if di.Primary.Min.X != dj.Primary.Min.X {
			return di.Primary.Min.X < dj.Primary.Min.X
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// String renders one diagnostic per line.
func (b *Bag) String() string {
	var sb strings.Builder
	for i, d := range b.items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.String())
	}
	return sb.String()
}

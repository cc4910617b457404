package diag

import "mulforge/internal/geom"

// Reporter is the minimal contract checks use to emit findings.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary geom.Rect, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, primary, msg)}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary geom.Rect, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary geom.Rect, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// WithEntry records the index of the offending solution entry.
func (b *ReportBuilder) WithEntry(i int) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithEntry(i)
	return b
}

// WithNote appends a note to the diagnostic.
func (b *ReportBuilder) WithNote(at geom.Rect, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(at, msg)
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// DedupReporter wraps another Reporter and suppresses diagnostics with the
// same code, severity, primary rectangle and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

type dedupKey struct {
	code    Code
	sev     Severity
	primary geom.Rect
	msg     string
}

// NewDedupReporter returns a Reporter that forwards unique diagnostics to next.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, primary: d.Primary, msg: d.Message}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}

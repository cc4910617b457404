package diag

import (
	"fmt"

	"mulforge/internal/geom"
)

type Note struct {
	At  geom.Rect
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  geom.Rect
	Entry    int
	Notes    []Note
}

func New(sev Severity, code Code, primary geom.Rect, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Entry:    -1,
		Message:  msg,
	}
}

func NewError(code Code, primary geom.Rect, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithEntry(i int) Diagnostic {
	d.Entry = i
	return d
}

func (d Diagnostic) WithNote(at geom.Rect, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{At: at, Msg: msg})
	return d
}

// String renders the diagnostic on one line, e.g.
// "ERROR COV1001 2x2@(4,0) entry 3: tiles overlap".
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s %s %s", d.Severity, d.Code.ID(), d.Primary)
	if d.Entry >= 0 {
		s += fmt.Sprintf(" entry %d", d.Entry)
	}
	return s + ": " + d.Message
}

package exact

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"mulforge/internal/solverimport"
	"mulforge/internal/tiling"
)

const lpLineWidth = 78

// WriteLP writes p as a binary program in CPLEX LP format. Every candidate is
// a binary variable named m_<x>_<y>_<type>, the naming read back by
// solverimport, so the "name 1" lines of a solver's solution file form a
// SolutionImport. The type index refers to NewTable(p.Library).
func WriteLP(w io.Writer, p tiling.Problem) error {
	if err := p.Validate(); err != nil {
		return err
	}
	table := NewTable(p.Library)
	cands, err := Enumerate(p, table, 0)
	if err != nil {
		return err
	}
	g := p.Grid
	cells := byCell(cands, g.Cells())
	for idx, list := range cells {
		if len(list) == 0 {
			return &tiling.TilingError{Kind: tiling.Unsatisfiable, Strategy: "lp", Cursor: g.At(idx)}
		}
	}
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = solverimport.Entry{Type: c.Type, X: c.Anchor.X, Y: c.Anchor.Y}.String()
	}

	lw := &lpWriter{w: bufio.NewWriter(w)}
	lw.line(fmt.Sprintf("\\ tiling of a %s multiplier, signedness %s", p.Grid, p.Signed))
	lw.line(fmt.Sprintf("\\ %d tile types, %d candidates", table.Len(), len(cands)))
	for i := 0; i < table.Len(); i++ {
		lw.line(fmt.Sprintf("\\ type %d: %s", i, table.Type(i)))
	}

	lw.line("Minimize")
	lw.begin(" obj:")
	for i, c := range cands {
		lw.term(i == 0, formatCoef(c.Param.Cost()), names[i])
	}
	lw.end("")

	lw.line("Subject To")
	for idx, list := range cells {
		at := g.At(idx)
		lw.begin(fmt.Sprintf(" c_%d_%d:", at.X, at.Y))
		for k, i := range list {
			lw.term(k == 0, "", names[i])
		}
		lw.end(" = 1")
	}

	if p.DSPBudget != tiling.Unlimited {
		first := true
		for i, c := range cands {
			if n := c.Param.DSPCount(); n > 0 {
				if first {
					lw.begin(" dsp:")
				}
				coef := ""
				if n > 1 {
					coef = strconv.Itoa(n)
				}
				lw.term(first, coef, names[i])
				first = false
			}
		}
		if !first {
			lw.end(" <= " + strconv.Itoa(p.DSPBudget))
		}
	}

	if p.Bounded() && len(cands) > 0 {
		lw.begin(" bound:")
		for i, c := range cands {
			lw.term(i == 0, formatCoef(c.Param.Cost()), names[i])
		}
		lw.end(" <= " + formatCoef(p.CostBound))
	}

	lw.line("Binary")
	for _, n := range names {
		lw.line(" " + n)
	}
	lw.line("End")
	return lw.flush()
}

func formatCoef(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// lpWriter wraps long rows of the model.
type lpWriter struct {
	w   *bufio.Writer
	col int
	err error
}

func (l *lpWriter) write(s string) {
	if l.err != nil {
		return
	}
	_, l.err = l.w.WriteString(s)
	l.col += len(s)
}

func (l *lpWriter) line(s string) {
	l.write(s)
	l.write("\n")
	l.col = 0
}

func (l *lpWriter) begin(label string) {
	l.write(label)
}

func (l *lpWriter) term(first bool, coef, name string) {
	t := name
	if coef != "" {
		t = coef + " " + name
	}
	if !first {
		t = "+ " + t
	}
	if l.col+1+len(t) > lpLineWidth {
		l.write("\n  ")
		l.col = 2
	} else {
		l.write(" ")
	}
	l.write(t)
}

func (l *lpWriter) end(rhs string) {
	if l.col+len(rhs) > lpLineWidth {
		l.write("\n ")
	}
	l.line(rhs)
}

func (l *lpWriter) flush() error {
	if l.err != nil {
		return l.err
	}
	return l.w.Flush()
}

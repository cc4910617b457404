package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"mulforge/internal/diag"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	infoLabel    = color.New(color.FgCyan)
	noteLabel    = color.New(color.Faint)
)

// printFindings writes at most max findings of bag, errors first.
func printFindings(out io.Writer, bag *diag.Bag, max int) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	bag.Sort()
	items := bag.Items()
	shown := items
	if max > 0 && len(shown) > max {
		shown = shown[:max]
	}
	for _, d := range shown {
		fmt.Fprintf(out, "%s %s %s", severityLabel(d.Severity), d.Code.ID(), d.Primary)
		if d.Entry >= 0 {
			fmt.Fprintf(out, " entry %d", d.Entry)
		}
		fmt.Fprintf(out, ": %s\n", d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(out, "  %s %s: %s\n", noteLabel.Sprint("note"), n.At, n.Msg)
		}
	}
	if rest := len(items) - len(shown); rest > 0 {
		fmt.Fprintf(out, "... %d more findings\n", rest)
	}
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return errorLabel.Sprint("error")
	case diag.SevWarning:
		return warningLabel.Sprint("warning")
	default:
		return infoLabel.Sprint("info")
	}
}

package trace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // one indented line per event
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent encodes ev as one line; FormatAuto writes text.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Job      string            `json:"job,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Job:      ev.Job,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		// only string maps and scalars; Marshal cannot fail
		return nil
	}
	return append(data, '\n')
}

// formatText writes "15:04:05.000 [job] <indent><mark> name (detail) {k=v, ...}",
// indented two spaces per scope below ScopeCommand.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	if ev.Job != "" {
		sb.WriteString("[" + ev.Job + "] ")
	}
	if ev.Scope > ScopeCommand {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeCommand)))
	}
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("> ")
	case KindSpanEnd:
		sb.WriteString("< ")
	case KindPoint:
		sb.WriteString("* ")
	case KindHeartbeat:
		sb.WriteString("~ ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (" + ev.Detail + ")")
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + ev.Extra[k])
		}
		sb.WriteByte('}')
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

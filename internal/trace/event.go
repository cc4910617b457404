package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Coarser scopes have lower values.
type Scope uint8

const (
	// ScopeCommand covers a CLI command or a pipeline run.
	ScopeCommand Scope = iota + 1
	// ScopeSolve covers one strategy run on one problem.
	ScopeSolve
	// ScopePlacement covers committed placements and post-passes.
	ScopePlacement
	ScopeCandidate
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeSolve:
		return "solve"
	case ScopePlacement:
		return "placement"
	case ScopeCandidate:
		return "candidate"
	default:
		return "unknown"
	}
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 at the root
	Job      string // pipeline job, empty outside a pipeline
	Name     string // e.g. "greedy", "commit", "supertiles"
	Detail   string
	Extra    map[string]string
}

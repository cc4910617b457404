package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives the events of commands, solves and placements. Strategies
// running under the pipeline share one tracer, so Emit must be safe for
// concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled lets hot loops such as candidate scoring skip building events.
	Enabled() bool
}

// StorageMode selects where events go: a stream written as solves run, a
// ring kept for crash reports, or both.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	ModeBoth
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode reads a --trace-mode value.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
	}
}

// Config mirrors the --trace* flags.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format        // FormatAuto picks from the OutputPath extension
	Output     io.Writer     // takes precedence over OutputPath
	OutputPath string        // "-" or empty for stderr
	RingSize   int           // 0 for DefaultRingSize
	Heartbeat  time.Duration // reported by the caller, not started here
}

// Normalize fills in what the flags leave open. An output path without a
// level asks for solve phases.
func (c Config) Normalize() Config {
	if c.Level == LevelOff && c.OutputPath != "" {
		c.Level = LevelPhase
	}
	if c.RingSize <= 0 {
		c.RingSize = DefaultRingSize
	}
	if c.Format == FormatAuto {
		c.Format = FormatText
		if strings.HasSuffix(c.OutputPath, ".ndjson") || strings.HasSuffix(c.OutputPath, ".json") {
			c.Format = FormatNDJSON
		}
	}
	return c
}

// New builds the tracer for cfg after normalizing it. A config that stays
// at LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	cfg = cfg.Normalize()
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format

	switch cfg.Mode {
	case ModeStream:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, format), nil

	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil

	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream := NewStreamTracer(w, cfg.Level, format)
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		return NewMultiTracer(cfg.Level, stream, ring), nil

	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}

	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}

	return f, nil
}

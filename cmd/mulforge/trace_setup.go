package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mulforge/internal/trace"
)

// ringTracer is the ring buffer of the active tracer, if any. It is dumped
// to stderr when a command panics.
var ringTracer *trace.RingTracer

// setupTracing inspects trace-related flags and initializes the tracer.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()
	ringTracer = nil

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	}.Normalize()
	if cfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	switch tr := tracer.(type) {
	case *trace.RingTracer:
		ringTracer = tr
	case *trace.MultiTracer:
		ringTracer = tr.Ring()
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	cleanup := func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		// a pure ring has written nothing yet
		if mode == trace.ModeRing && ringTracer != nil && traceOutput != "" {
			if err := dumpRing(traceOutput, cfg.Format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func dumpRing(path string, format trace.Format) error {
	if path == "-" {
		return ringTracer.Dump(os.Stderr, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ringTracer.Dump(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// dumpTraceOnPanic names the solves in flight, writes the ring buffer to
// stderr and re-panics.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if ringTracer != nil {
		fmt.Fprintln(os.Stderr, "panic: last trace events:")
		_ = ringTracer.DumpCrash(os.Stderr)
	}
	panic(r)
}

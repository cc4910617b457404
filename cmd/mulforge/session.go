package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mulforge/internal/exact"
	"mulforge/internal/geom"
	"mulforge/internal/observ"
	"mulforge/internal/scache"
	"mulforge/internal/target"
	"mulforge/internal/tile"
	"mulforge/internal/tiling"
)

// session carries what every solving command sets up: tracing, profiling,
// the target and its library, the cache and the phase timer.
type session struct {
	timer   *observ.Timer
	target  *target.Target
	lib     *tile.Library
	cache   *scache.Cache
	quiet   bool
	timings bool
	cleanup []func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	s := &session{timer: observ.NewTimer()}
	root := cmd.Root().PersistentFlags()

	var err error
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	timeout, err := root.GetDuration("timeout")
	if err != nil {
		return nil, fmt.Errorf("failed to get timeout flag: %w", err)
	}
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		cmd.SetContext(ctx)
		s.cleanup = append(s.cleanup, cancel)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	s.cleanup = append(s.cleanup, stopProfiling)
	stopTracing, err := setupTracing(cmd)
	if err != nil {
		s.close()
		return nil, err
	}
	s.cleanup = append(s.cleanup, stopTracing)

	err = s.timer.Measure("target", func() error {
		path, err := root.GetString("target")
		if err != nil {
			return fmt.Errorf("failed to get target flag: %w", err)
		}
		if path == "" {
			s.target = target.Default()
		} else if s.target, err = target.Load(path); err != nil {
			return err
		}
		s.lib, err = s.target.Build()
		return err
	})
	if err != nil {
		s.close()
		return nil, err
	}

	cacheDir, err := root.GetString("cache")
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	switch cacheDir {
	case "":
	case "auto":
		s.cache, err = scache.OpenDefault("mulforge")
	default:
		s.cache, err = scache.Open(cacheDir)
	}
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return s, nil
}

// close runs the cleanups in reverse order. The tracer is flushed before the
// profiles are written.
func (s *session) close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
	s.cleanup = nil
}

// addProblemFlags registers the flags that override the target defaults.
func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().String("signed", "none", "signed operands (none|x|y|xy)")
	cmd.Flags().Int("dsp-budget", tiling.Unlimited, "maximum DSP blocks (-1 for no limit)")
	cmd.Flags().Float64("threshold", 0, "minimum DSP occupation ratio in [0, 1]")
	cmd.Flags().Float64("cost-bound", 0, "abort once the cost exceeds this bound (0 disables)")
	cmd.Flags().Bool("varlen", false, "allow variable-length LUT tiles")
	cmd.Flags().Bool("supertiles", false, "merge DSP pairs into supertiles")
}

// problem builds the problem of grid from the target defaults and the flags
// the user set explicitly.
func (s *session) problem(cmd *cobra.Command, g geom.Grid) (tiling.Problem, error) {
	flags := cmd.Flags()
	signedStr, err := flags.GetString("signed")
	if err != nil {
		return tiling.Problem{}, fmt.Errorf("failed to get signed flag: %w", err)
	}
	signed, err := parseSigned(signedStr)
	if err != nil {
		return tiling.Problem{}, err
	}
	p := s.target.Problem(s.lib, g, signed)

	if flags.Changed("dsp-budget") {
		if p.DSPBudget, err = flags.GetInt("dsp-budget"); err != nil {
			return p, fmt.Errorf("failed to get dsp-budget flag: %w", err)
		}
	}
	if flags.Changed("threshold") {
		if p.OccupationThreshold, err = flags.GetFloat64("threshold"); err != nil {
			return p, fmt.Errorf("failed to get threshold flag: %w", err)
		}
	}
	if flags.Changed("cost-bound") {
		if p.CostBound, err = flags.GetFloat64("cost-bound"); err != nil {
			return p, fmt.Errorf("failed to get cost-bound flag: %w", err)
		}
	}
	if flags.Changed("varlen") {
		if p.VariableLength, err = flags.GetBool("varlen"); err != nil {
			return p, fmt.Errorf("failed to get varlen flag: %w", err)
		}
	}
	if flags.Changed("supertiles") {
		if p.SuperTiles, err = flags.GetBool("supertiles"); err != nil {
			return p, fmt.Errorf("failed to get supertiles flag: %w", err)
		}
	}
	return p, p.Validate()
}

// parseGrid reads "WxH", or "N" for a square N-bit multiplier.
func parseGrid(s string) (geom.Grid, error) {
	ws, hs, found := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !found {
		hs = ws
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w < 0 {
		return geom.Grid{}, fmt.Errorf("invalid grid %q (expected WxH)", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 {
		return geom.Grid{}, fmt.Errorf("invalid grid %q (expected WxH)", s)
	}
	return geom.Grid{W: w, H: h}, nil
}

func parseSigned(s string) (geom.Signedness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "unsigned":
		return geom.Signedness{}, nil
	case "x":
		return geom.Signedness{X: true}, nil
	case "y":
		return geom.Signedness{Y: true}, nil
	case "xy", "both":
		return geom.Signedness{X: true, Y: true}, nil
	default:
		return geom.Signedness{}, fmt.Errorf("invalid --signed value %q (expected none|x|y|xy)", s)
	}
}

// addSATFlags registers the limits of the sat strategy.
func addSATFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-candidates", 0, "candidate limit of the sat strategy (0 for the default)")
	cmd.Flags().Duration("sat-timeout", 30*time.Second, "give up a sat solve after this long (0 for no limit)")
}

// strategyFromFlags returns the named strategy with the limits of addSATFlags.
func strategyFromFlags(cmd *cobra.Command, name string) (tiling.Strategy, error) {
	maxCandidates, err := cmd.Flags().GetInt("max-candidates")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-candidates flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("sat-timeout")
	if err != nil {
		return nil, fmt.Errorf("failed to get sat-timeout flag: %w", err)
	}
	return strategyByName(name, exact.SAT{MaxCandidates: maxCandidates, Timeout: timeout})
}

// strategyByName returns the named search strategy; sat is the configured
// exact strategy.
func strategyByName(name string, sat exact.SAT) (tiling.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "greedy":
		return tiling.Greedy{}, nil
	case "sat":
		return sat, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (expected greedy|sat)", name)
	}
}

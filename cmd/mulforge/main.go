package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mulforge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mulforge",
	Short: "Tile multiplier partial-product grids with DSP and LUT blocks",
	Long: `mulforge covers the partial-product grid of a large multiplier with DSP blocks,
LUT multipliers and variable-length tiles, and reports the placements ready
to be summed in a bit heap.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tileCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(lpCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of findings to show")
	pf.String("target", "", "target capability file (TOML); the built-in generic target when empty")
	pf.String("cache", "", "solution cache directory (\"auto\" for the user cache dir, empty to disable)")
	pf.String("ui", "auto", "progress UI (auto|on|off)")
	pf.Duration("timeout", 0, "cancel the command after this long (0 for no limit)")

	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
		return applyColor(colorFlag)
	}
}

// main runs the root command. A failed command exits with status 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func applyColor(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

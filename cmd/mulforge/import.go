package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mulforge/internal/exact"
	"mulforge/internal/pipeline"
	"mulforge/internal/solverimport"
	"mulforge/internal/tiling"
)

var importCmd = &cobra.Command{
	Use:   "import [flags] <solution-file>",
	Short: "Check and print a tiling found by an external solver",
	Long: `Import reads the "m_<x>_<y>_<type> 1" lines of an external solver's solution to a
model written by "mulforge lp", places them on the grid and reports every problem
found: unknown types, duplicates, overlaps and uncovered cells.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	addProblemFlags(importCmd)
	importCmd.Flags().String("grid", "", "grid the model was written for (WxH)")
	importCmd.Flags().Bool("map", false, "draw the tiling map")
	importCmd.Flags().Int("map-width", 0, "cut the map after this many columns (0 for no limit)")
	importCmd.Flags().Bool("bitheap", false, "list the bit heap registrations of the tiling")
	importCmd.Flags().Bool("negate", false, "subtract the product in the bit heap listing")
	_ = importCmd.MarkFlagRequired("grid")
}

func runImport(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	gridStr, err := cmd.Flags().GetString("grid")
	if err != nil {
		return fmt.Errorf("failed to get grid flag: %w", err)
	}
	g, err := parseGrid(gridStr)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := s.problem(cmd, g)
	if err != nil {
		return err
	}
	var entries []solverimport.Entry
	err = s.timer.Measure("parse", func() error {
		entries, err = solverimport.ParseFile(args[0])
		return err
	})
	if err != nil {
		return err
	}

	// The cache key does not cover the imported entries, so imports bypass it.
	strategy := exact.Imported{Entries: entries}
	var res pipeline.Result
	err = s.timer.Measure("place", func() error {
		results, err := pipeline.Run(cmd.Context(), []pipeline.Job{{Name: args[0], Strategy: strategy, Problem: p}},
			pipeline.Options{Jobs: 1})
		if err != nil {
			return err
		}
		res = results[0]
		return nil
	})
	if err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	out := cmd.OutOrStdout()
	if !res.OK() {
		var terr *tiling.TilingError
		if errors.As(res.Err, &terr) && terr.Findings != nil {
			printFindings(out, terr.Findings, maxDiagnostics)
		}
		return res.Err
	}
	writeSolutionText(out, strategy.Name(), p, res, s.quiet)
	printFindings(out, res.Findings, maxDiagnostics)
	if err := writeExtras(cmd, out, p, res.Solution); err != nil {
		return err
	}
	if s.timings {
		printTimer(cmd.ErrOrStderr(), s.timer)
	}
	return nil
}

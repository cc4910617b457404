package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mulforge/internal/pipeline"
	"mulforge/internal/tiling"
)

var compareCmd = &cobra.Command{
	Use:   "compare [flags] <WxH>",
	Short: "Run several strategies on one grid and compare their costs",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	addProblemFlags(compareCmd)
	compareCmd.Flags().StringSlice("strategies", []string{"greedy", "sat"}, "strategies to run")
	addSATFlags(compareCmd)
	compareCmd.Flags().Int("jobs", 0, "max parallel jobs (0=auto)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	g, err := parseGrid(args[0])
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
	names, err := cmd.Flags().GetStringSlice("strategies")
	if err != nil {
		return fmt.Errorf("failed to get strategies flag: %w", err)
	}
	jobsN, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	jobs := make([]pipeline.Job, 0, len(names))
	for _, name := range names {
		strategy, err := strategyFromFlags(cmd, name)
		if err != nil {
			return err
		}
		jobs = append(jobs, pipeline.Job{
			Name:     fmt.Sprintf("%s %s", strategy.Name(), g),
			Strategy: strategy,
			Problem:  p,
		})
	}
	tui, err := useTUI(cmd)
	if err != nil {
		return err
	}

	var results []pipeline.Result
	err = s.timer.Measure("compare", func() error {
		var err error
		results, err = runJobs(cmd.Context(), tui, "compare "+g.String(), jobs, pipeline.Options{Jobs: jobsN, Cache: s.cache})
		return err
	})
	if err != nil {
		return err
	}
	printComparison(cmd.OutOrStdout(), results, true)
	if s.timings {
		for _, r := range results {
			printStageTimings(cmd.ErrOrStderr(), r.Job.Name, r.Timings)
		}
		printTimer(cmd.ErrOrStderr(), s.timer)
	}
	if pipeline.Cheapest(results) < 0 {
		return fmt.Errorf("no strategy tiled %s", g)
	}
	return nil
}

var bestMark = color.New(color.FgGreen, color.Bold)

// printComparison writes one row per result. With markBest the cheapest
// result is starred.
func printComparison(out io.Writer, results []pipeline.Result, markBest bool) {
	best := -1
	if markBest {
		best = pipeline.Cheapest(results)
	}
	fmt.Fprintf(out, "%-24s %10s %5s %6s %10s\n", "job", "cost", "dsp", "tiles", "time")
	for i, r := range results {
		mark := " "
		if i == best {
			mark = bestMark.Sprint("*")
		}
		elapsed := toMillis(r.Timings.Sum(pipeline.StageCache, pipeline.StageSolve, pipeline.StageCheck, pipeline.StageStore))
		if !r.OK() {
			fmt.Fprintf(out, "%-24s %10s %5s %6s %8.1fms  %s\n", r.Job.Name, "-", "-", "-", elapsed, failureLabel(r.Err))
			continue
		}
		cached := ""
		if r.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(out, "%-24s %10g %5d %6d %8.1fms %s%s\n",
			r.Job.Name, r.Solution.Cost, r.Solution.DSPCount(), len(r.Solution.Entries), elapsed, mark, cached)
	}
}

func failureLabel(err error) string {
	for _, k := range []tiling.ErrorKind{tiling.Unsatisfiable, tiling.CostExceeded, tiling.InvalidSolution} {
		if tiling.IsKind(err, k) {
			return errorLabel.Sprint(k.String())
		}
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return errorLabel.Sprint(msg)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mulforge/internal/geom"
	"mulforge/internal/pipeline"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep [flags]",
	Short: "Tile a range of square multipliers",
	Long: `Sweep tiles every NxN multiplier for N from --from to --to in steps of --step and
prints the cost of each. Jobs run in parallel; a progress view is shown on a terminal.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	addProblemFlags(sweepCmd)
	sweepCmd.Flags().Int("from", 8, "first operand width")
	sweepCmd.Flags().Int("to", 64, "last operand width")
	sweepCmd.Flags().Int("step", 8, "width increment")
	sweepCmd.Flags().String("strategy", "greedy", "search strategy (greedy|sat)")
	addSATFlags(sweepCmd)
	sweepCmd.Flags().Int("jobs", 0, "max parallel jobs (0=auto)")
	sweepCmd.Flags().Bool("fail-fast", false, "stop at the first failed job")
}

func runSweep(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	flags := cmd.Flags()
	from, err := flags.GetInt("from")
	if err != nil {
		return fmt.Errorf("failed to get from flag: %w", err)
	}
	to, err := flags.GetInt("to")
	if err != nil {
		return fmt.Errorf("failed to get to flag: %w", err)
	}
	step, err := flags.GetInt("step")
	if err != nil {
		return fmt.Errorf("failed to get step flag: %w", err)
	}
	if from < 1 || to < from || step < 1 {
		return fmt.Errorf("invalid range %d..%d step %d", from, to, step)
	}
	name, err := flags.GetString("strategy")
	if err != nil {
		return fmt.Errorf("failed to get strategy flag: %w", err)
	}
	jobsN, err := flags.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	failFast, err := flags.GetBool("fail-fast")
	if err != nil {
		return fmt.Errorf("failed to get fail-fast flag: %w", err)
	}
	strategy, err := strategyFromFlags(cmd, name)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var jobs []pipeline.Job
	for n := from; n <= to; n += step {
		g := geom.Grid{W: n, H: n}
		p, err := s.problem(cmd, g)
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
	err = s.timer.Measure("sweep", func() error {
		var err error
		results, err = runJobs(cmd.Context(), tui, fmt.Sprintf("sweep %d..%d", from, to), jobs,
			pipeline.Options{Jobs: jobsN, Cache: s.cache, FailFast: failFast})
		return err
	})
	if err != nil {
		return err
	}
	printComparison(cmd.OutOrStdout(), results, false)
	if s.timings {
		printTimer(cmd.ErrOrStderr(), s.timer)
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}

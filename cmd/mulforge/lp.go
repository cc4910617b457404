package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mulforge/internal/exact"
	"mulforge/internal/tiling"
)

var lpCmd = &cobra.Command{
	Use:   "lp [flags] <WxH>",
	Short: "Write the tiling of a WxH multiplier as a binary program",
	Long: `Lp writes the tiling problem in CPLEX LP format for an external MIP solver. The
variables of the solver's solution can be read back with "mulforge import".`,
	Args: cobra.ExactArgs(1),
	RunE: runLP,
}

func init() {
	addProblemFlags(lpCmd)
	lpCmd.Flags().StringP("output", "o", "-", "output file (\"-\" for stdout)")
	lpCmd.Flags().String("start", "", "also write the greedy tiling to this file as a solver start")
}

func runLP(cmd *cobra.Command, args []string) error {
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
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	start, err := cmd.Flags().GetString("start")
	if err != nil {
		return fmt.Errorf("failed to get start flag: %w", err)
	}

	err = s.timer.Measure("lp", func() error {
		return writeTo(cmd.OutOrStdout(), output, func(w io.Writer) error {
			return exact.WriteLP(w, p)
		})
	})
	if err != nil {
		return err
	}
	if start != "" {
		err = s.timer.Measure("start", func() error {
			sol, err := tiling.Greedy{}.Solve(cmd.Context(), p)
			if err != nil {
				return err
			}
			table := exact.NewTable(p.Library)
			return writeTo(cmd.OutOrStdout(), start, func(w io.Writer) error {
				return exact.WriteAssignment(w, sol, table)
			})
		})
		if err != nil {
			return err
		}
	}
	if s.timings {
		printTimer(cmd.ErrOrStderr(), s.timer)
	}
	return nil
}

// writeTo runs write on stdout for "-" and on a new file otherwise.
func writeTo(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

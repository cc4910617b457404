package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mulforge/internal/bitheap"
	"mulforge/internal/pipeline"
	"mulforge/internal/tiling"
	"mulforge/internal/ui"
)

var tileCmd = &cobra.Command{
	Use:   "tile [flags] <WxH>",
	Short: "Tile the partial-product grid of a WxH multiplier",
	Long: `Tile covers the partial-product grid of a multiplier with an X operand of W bits
and a Y operand of H bits, using the tiles of the target, and prints the placements.`,
	Args: cobra.ExactArgs(1),
	RunE: runTile,
}

func init() {
	addProblemFlags(tileCmd)
	tileCmd.Flags().String("strategy", "greedy", "search strategy (greedy|sat)")
	addSATFlags(tileCmd)
	tileCmd.Flags().String("format", "text", "output format (text|json)")
	tileCmd.Flags().Bool("map", false, "draw the tiling map")
	tileCmd.Flags().Int("map-width", 0, "cut the map after this many columns (0 for no limit)")
	tileCmd.Flags().Bool("bitheap", false, "list the bit heap registrations of the tiling")
	tileCmd.Flags().Bool("negate", false, "subtract the product in the bit heap listing")
}

func runTile(cmd *cobra.Command, args []string) error {
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
	name, err := cmd.Flags().GetString("strategy")
	if err != nil {
		return fmt.Errorf("failed to get strategy flag: %w", err)
	}
	strategy, err := strategyFromFlags(cmd, name)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}

	var res pipeline.Result
	err = s.timer.Measure("solve", func() error {
		results, err := pipeline.Run(cmd.Context(), []pipeline.Job{{Strategy: strategy, Problem: p}},
			pipeline.Options{Jobs: 1, Cache: s.cache})
		if err != nil {
			return err
		}
		res = results[0]
		return nil
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !res.OK() {
		var terr *tiling.TilingError
		if errors.As(res.Err, &terr) && terr.Findings != nil {
			printFindings(cmd.ErrOrStderr(), terr.Findings, maxDiagnostics)
		}
		return res.Err
	}

	if format == "json" {
		if err := writeSolutionJSON(out, strategy.Name(), p, res); err != nil {
			return err
		}
	} else {
		writeSolutionText(out, strategy.Name(), p, res, s.quiet)
		printFindings(out, res.Findings, maxDiagnostics)
		if err := writeExtras(cmd, out, p, res.Solution); err != nil {
			return err
		}
	}

	if s.timings {
		printStageTimings(cmd.ErrOrStderr(), res.Job.Name, res.Timings)
		printTimer(cmd.ErrOrStderr(), s.timer)
	}
	return nil
}

func writeExtras(cmd *cobra.Command, out io.Writer, p tiling.Problem, sol tiling.Solution) error {
	showMap, err := cmd.Flags().GetBool("map")
	if err != nil {
		return fmt.Errorf("failed to get map flag: %w", err)
	}
	if showMap {
		width, err := cmd.Flags().GetInt("map-width")
		if err != nil {
			return fmt.Errorf("failed to get map-width flag: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.RenderMap(sol, p.Grid, p.Signed, ui.MapOptions{
			Plain:    color.NoColor,
			Legend:   true,
			MaxWidth: width,
		}))
	}

	showHeap, err := cmd.Flags().GetBool("bitheap")
	if err != nil {
		return fmt.Errorf("failed to get bitheap flag: %w", err)
	}
	if showHeap {
		negate, err := cmd.Flags().GetBool("negate")
		if err != nil {
			return fmt.Errorf("failed to get negate flag: %w", err)
		}
		heap := bitheap.NewRecorder("product")
		if err := bitheap.Wire(heap, sol, negate); err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, heap.String())
	}
	return nil
}

func writeSolutionText(out io.Writer, strategy string, p tiling.Problem, res pipeline.Result, quiet bool) {
	sol := res.Solution
	cached := ""
	if res.Cached {
		cached = " (cached)"
	}
	fmt.Fprintf(out, "%s %s %s: cost %g, %d DSP blocks, %d tiles%s\n",
		strategy, p.Grid, p.Signed, sol.Cost, sol.DSPCount(), len(sol.Entries), cached)
	if quiet {
		return
	}
	for _, in := range sol.Instances() {
		fmt.Fprintf(out, "  %-20s at %-9s %2dx%-2d weight %-3d out %-3d cost %g\n",
			in.Name, in.Anchor, in.Width, in.Height, in.Weight, in.OutputBits, in.Cost)
	}
}

type solutionPayload struct {
	Strategy  string            `json:"strategy"`
	Grid      string            `json:"grid"`
	Signed    string            `json:"signed"`
	Cost      float64           `json:"cost"`
	DSPBlocks int               `json:"dsp_blocks"`
	Cached    bool              `json:"cached,omitempty"`
	Tiles     []instancePayload `json:"tiles"`
}

type instancePayload struct {
	Name       string  `json:"name"`
	Shape      string  `json:"shape"`
	Kind       string  `json:"kind"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Weight     int     `json:"weight"`
	OutputBits int     `json:"output_bits"`
	SignedX    bool    `json:"signed_x,omitempty"`
	SignedY    bool    `json:"signed_y,omitempty"`
	Cost       float64 `json:"cost"`
}

func writeSolutionJSON(out io.Writer, strategy string, p tiling.Problem, res pipeline.Result) error {
	payload := solutionPayload{
		Strategy:  strategy,
		Grid:      p.Grid.String(),
		Signed:    p.Signed.String(),
		Cost:      res.Solution.Cost,
		DSPBlocks: res.Solution.DSPCount(),
		Cached:    res.Cached,
		Tiles:     []instancePayload{},
	}
	for _, in := range res.Solution.Instances() {
		payload.Tiles = append(payload.Tiles, instancePayload{
			Name:       in.Name,
			Shape:      in.Shape,
			Kind:       in.Kind.String(),
			X:          in.Anchor.X,
			Y:          in.Anchor.Y,
			Width:      in.Width,
			Height:     in.Height,
			Weight:     in.Weight,
			OutputBits: in.OutputBits,
			SignedX:    in.Signed.X,
			SignedY:    in.Signed.Y,
			Cost:       in.Cost,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

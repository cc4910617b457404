package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mulforge/internal/target"
	"mulforge/internal/tile"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Inspect target capability files",
}

var targetDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the active target as TOML",
	Long: `Dump prints the target selected by --target, or the built-in generic target, in
the format --target reads. It is a starting point for a new target file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := activeTarget(cmd)
		if err != nil {
			return err
		}
		return target.Write(cmd.OutOrStdout(), t)
	},
}

var targetCheckCmd = &cobra.Command{
	Use:   "check <file.toml>...",
	Short: "Validate target files and list their tiles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			t, err := target.Load(path)
			var lib *tile.Library
			if err == nil {
				lib, err = t.Build()
			}
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s %v\n", errorLabel.Sprint("error"), err)
				continue
			}
			fmt.Fprintf(out, "%s: target %q, %d tile types\n", path, t.Name, len(lib.Types()))
			for _, s := range lib.Types() {
				fmt.Fprintf(out, "  %-12s %-8s %s\n", s.Name(), s.Kind(), shapeSize(s.Width(), s.Height()))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d target files are invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	targetCmd.AddCommand(targetDumpCmd)
	targetCmd.AddCommand(targetCheckCmd)
}

func activeTarget(cmd *cobra.Command) (*target.Target, error) {
	path, err := cmd.Root().PersistentFlags().GetString("target")
	if err != nil {
		return nil, fmt.Errorf("failed to get target flag: %w", err)
	}
	if path == "" {
		return target.Default(), nil
	}
	return target.Load(path)
}

func shapeSize(w, h int) string {
	ws, hs := strconv.Itoa(w), strconv.Itoa(h)
	if w == tile.Unbounded {
		ws = "k"
	}
	if h == tile.Unbounded {
		hs = "k"
	}
	return ws + "x" + hs
}

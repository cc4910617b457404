package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mulforge/internal/scache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the solution cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached solution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCacheFlag(cmd)
		if err != nil {
			return err
		}
		if err := c.DropAll(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", c.Dir())
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCacheFlag(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePathCmd)
}

// openCacheFlag opens the --cache directory, the per-user one when the flag
// is empty or "auto".
func openCacheFlag(cmd *cobra.Command) (*scache.Cache, error) {
	dir, err := cmd.Root().PersistentFlags().GetString("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if dir == "" || dir == "auto" {
		return scache.OpenDefault("mulforge")
	}
	return scache.Open(dir)
}

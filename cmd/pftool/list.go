package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hpc-pftool/pftool/internal/cluster"
)

type listOptions struct {
	recurse bool
}

// newListCommand is pftool's walk-only operation: stat and print every
// path under the given roots without copying or comparing anything. It
// classifies entries with the same cluster.StatItem the copy workers use,
// but walks the tree serially in this process rather than through the
// cluster's workers.
func newListCommand(ctx context.Context) *cobra.Command {
	var opt listOptions
	cmd := &cobra.Command{
		Use:   "list <path...>",
		Short: "Recursively list files and directories with stat information.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(ctx, opt, args)
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVarP(&opt.recurse, "recurse", "r", true, "recurse into directories")
	return cmd
}

func runList(ctx context.Context, opt listOptions, args []string) error {
	for _, root := range args {
		if err := walk(root, opt.recurse); err != nil {
			return err
		}
	}
	return nil
}

func walk(root string, recurse bool) error {
	item, err := cluster.StatItem(root)
	if err != nil {
		return err
	}
	fmt.Printf("%o %8d %s\n", item.Stat.Mode&0o7777, item.Stat.Size, item.Path)
	if !item.Stat.IsDir() || !recurse {
		return nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := walk(filepath.Join(root, entry.Name()), recurse); err != nil {
			return err
		}
	}
	return nil
}

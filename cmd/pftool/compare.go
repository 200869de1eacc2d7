package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hpc-pftool/pftool/internal/cluster"
	"github.com/hpc-pftool/pftool/internal/engine"
	"github.com/hpc-pftool/pftool/internal/iobackend"
	"github.com/hpc-pftool/pftool/internal/model"
	"github.com/hpc-pftool/pftool/internal/pathutil"
)

type compareOptions struct {
	recurse   bool
	metaOnly  bool
	blockSize int64
}

func newCompareCommand(ctx context.Context) *cobra.Command {
	var opt compareOptions
	cmd := &cobra.Command{
		Use:   "compare <source> <destination>",
		Short: "Compare one source path against its destination without copying; directories are not descended into.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(ctx, opt, args)
		},
		SilenceUsage: true,
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opt.recurse, "recurse", "r", true, "resolve the destination path the way a recursive copy would")
	flags.BoolVar(&opt.metaOnly, "meta-only", false, "compare metadata only, skip byte compare")
	flags.Int64Var(&opt.blockSize, "block-size", 1<<20, "read block size in bytes")
	return cmd
}

func runCompare(ctx context.Context, opt compareOptions, args []string) error {
	src, err := cluster.StatItem(args[0])
	if err != nil {
		return err
	}
	base := pathutil.BasePath(src.Path, false, src.Stat.IsDir())
	destInfo, statErr := os.Stat(args[1])
	destExists := statErr == nil
	destIsDir := destExists && destInfo.IsDir()
	destPath := pathutil.OutputPath(base, src.Path, args[1], destIsDir || opt.recurse, opt.recurse)

	dst, dstExists := dstItem(destPath)
	verdict, err := engine.Compare(ctx, src, dst, dstExists, opt.blockSize, opt.metaOnly, iobackend.NewDefaultSelector())
	if err != nil {
		return err
	}
	fmt.Printf("%s %s: %s\n", src.Path, destPath, verdict)
	if verdict != engine.Equal {
		os.Exit(1)
	}
	return nil
}

func dstItem(path string) (model.PathItem, bool) {
	item, err := cluster.StatItem(path)
	if err != nil {
		return model.PathItem{}, false
	}
	return item, true
}

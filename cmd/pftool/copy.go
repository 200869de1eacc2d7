package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/hpc-pftool/pftool/internal/cluster"
	"github.com/hpc-pftool/pftool/internal/config"
	"github.com/hpc-pftool/pftool/internal/iobackend"
	"github.com/hpc-pftool/pftool/internal/logsetup"
	"github.com/hpc-pftool/pftool/internal/model"
)

type copyOptions struct {
	recurse    bool
	numWorkers int
	blockSize  int64
	chunkAt    int64
	chunkSize  int64
	descriptor string
}

// newCopyCommand mirrors the shape of desync's per-operation subcommands
// (cmd/desync/chop.go): a cobra.Command builds an options struct from
// flags, then hands it to a run function that does the actual work.
func newCopyCommand(ctx context.Context) *cobra.Command {
	var opt copyOptions
	cmd := &cobra.Command{
		Use:   "copy <source...> <destination>",
		Short: "Recursively copy files and directories across ranks in parallel.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(ctx, opt, args)
		},
		SilenceUsage: true,
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opt.recurse, "recurse", "r", true, "recurse into directories")
	flags.IntVarP(&opt.numWorkers, "workers", "n", runtime.NumCPU(), "number of worker ranks")
	flags.Int64Var(&opt.blockSize, "block-size", 1<<20, "read/write block size in bytes")
	flags.Int64Var(&opt.chunkAt, "chunk-at", 0, "split files at or above this size into chunks (with 0, every file is chunked once --chunk-size is set)")
	flags.Int64Var(&opt.chunkSize, "chunk-size", 0, "chunk size in bytes (0 disables chunking)")
	flags.StringVar(&opt.descriptor, "config", "", "job descriptor ini file overriding the flags above")
	return cmd
}

func runCopy(ctx context.Context, opt copyOptions, args []string) error {
	sources := args[:len(args)-1]
	destination := args[len(args)-1]

	if opt.descriptor != "" {
		co := config.Options{
			Recurse:    opt.recurse,
			NumWorkers: opt.numWorkers,
			BlockSize:  opt.blockSize,
			ChunkAt:    opt.chunkAt,
			ChunkSize:  opt.chunkSize,
		}
		if err := config.LoadJobDescriptor(opt.descriptor, &co); err != nil {
			return err
		}
		opt.recurse, opt.numWorkers, opt.blockSize, opt.chunkAt, opt.chunkSize =
			co.Recurse, co.NumWorkers, co.BlockSize, co.ChunkAt, co.ChunkSize
	}

	log, closeLog, err := logsetup.New(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	seed := make([]model.PathItem, 0, len(sources))
	for _, src := range sources {
		item, err := cluster.StatItem(src)
		if err != nil {
			return err
		}
		item.DestType = item.FType
		seed = append(seed, item)
	}

	// Prefix("pending") + SetTotal/Set mirrors desync's own
	// gopkg.in/cheggaaa/pb.v1 usage (progressbar.go): start at an unknown
	// total and let the first few updates establish it, rather than seeding
	// the total from len(seed), which only counts the top-level sources and
	// says nothing about the work a recursive walk still has to discover.
	bar := pb.New(0).Prefix("pending")
	bar.Start()
	defer bar.Finish()

	barTotal := 0
	job := &cluster.Job{
		NumWorkers:  opt.numWorkers,
		Selector:    iobackend.NewDefaultSelector(),
		Log:         log,
		BlockSize:   opt.blockSize,
		ChunkAt:     opt.chunkAt,
		ChunkSize:   opt.chunkSize,
		Destination: destination,
		Recurse:     opt.recurse,
		OnQueueSize: func(n int) {
			if n > barTotal {
				barTotal = n
				bar.SetTotal(barTotal)
			}
			bar.Set(n)
		},
	}
	snapshot, err := job.Run(ctx, seed)
	if err != nil {
		return err
	}
	fmt.Printf("copied %d files (%d bytes), %d non-fatal errors, destination %s\n",
		snapshot.CopiedFiles, snapshot.CopiedBytes, snapshot.NonFatalErrors, destination)
	return nil
}

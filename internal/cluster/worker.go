package cluster

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/hpc-pftool/pftool/internal/chunk"
	"github.com/hpc-pftool/pftool/internal/engine"
	"github.com/hpc-pftool/pftool/internal/iobackend"
	"github.com/hpc-pftool/pftool/internal/model"
	"github.com/hpc-pftool/pftool/internal/pathutil"
	"github.com/hpc-pftool/pftool/internal/proto"
)

// Worker is a stateless processor of whatever the manager hands it: list a
// directory (Dir) or run Copy on a batch of PathItems (Process, Input,
// Tape); any other command is acknowledged with WorkDone and ignored. It
// holds no queue of its own - every unit of work arrives fully formed from
// the manager, process it, report back, and ask for more, mirroring the
// source's WORKER_PROC loop (original_source/src/pfutils.c) stripped of its
// MPI datatype packing.
type Worker struct {
	rank        int
	selector    iobackend.Selector
	blockSize   int64
	chunkAt     int64
	chunkSize   int64
	recurse     bool
	accumulator *Accumulator
}

// NewWorker builds a worker for rank, consulting selector to resolve each
// PathItem's backend and chunking files at or above chunkAt bytes into
// chunkSize pieces (0 disables chunking). blockSize bounds the read/write
// buffer used inside a single chunk's copy loop, independent of how big
// that chunk is. accumulator tracks per-file chunk completion directly -
// in-process, workers consult it like a shared table rather than
// round-tripping a CHUNKBUSY/UPDCHUNK message through a dedicated
// accumulator rank the way the source's MPI build must.
func NewWorker(rank int, selector iobackend.Selector, blockSize, chunkAt, chunkSize int64, recurse bool, accumulator *Accumulator) *Worker {
	return &Worker{rank: rank, selector: selector, blockSize: blockSize, chunkAt: chunkAt, chunkSize: chunkSize, recurse: recurse, accumulator: accumulator}
}

// Run receives frames until Exit or ctx cancellation, dispatching each to
// the matching handler and reporting errors to Output via ErrSend rather
// than returning them directly - a single bad PathItem must not bring the
// worker down.
func (w *Worker) Run(ctx context.Context, fabric Fabric, cancel context.CancelFunc) error {
	for {
		frame, err := fabric.Recv(ctx, w.rank)
		if err != nil {
			return err
		}
		if frame.Cmd == proto.Exit {
			return nil
		}

		var handleErr error
		switch frame.Cmd {
		case proto.Dir:
			handleErr = w.handleDir(ctx, fabric, frame)
		case proto.Process, proto.Input, proto.Tape:
			handleErr = w.handleItems(ctx, fabric, frame)
		default:
			handleErr = nil
		}
		if handleErr != nil {
			if err := ErrSend(ctx, fabric, w.rank, NonFatal, handleErr, cancel); err != nil {
				return err
			}
		}
		if err := fabric.Send(ctx, w.rank, ManagerRank, proto.WorkDone, nil); err != nil {
			return err
		}
	}
}

// handleDir lists one directory's immediate children, stats each, and
// reports them back to the manager as Process work (files) or further Dir
// work (subdirectories), the worker-side half of the source's
// process_path's S_ISDIR branch.
func (w *Worker) handleDir(ctx context.Context, fabric Fabric, frame Frame) error {
	for _, dirItem := range frame.Items {
		destDir := pathutil.OutputPath(dirItem.Base, dirItem.Path, dirItem.DestRoot, dirItem.DestIsDir, w.recurse)
		if err := pathutil.MkPath(destDir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", destDir)
		}

		entries, err := os.ReadDir(dirItem.Path)
		if err != nil {
			return errors.Wrapf(err, "failed to read directory %s", dirItem.Path)
		}
		var files, dirs []model.PathItem
		for _, entry := range entries {
			full := filepath.Join(dirItem.Path, entry.Name())
			item, err := StatItem(full)
			if err != nil {
				return err
			}
			item.DestType = dirItem.DestType
			item.FsType = dirItem.FsType
			item.Base = dirItem.Base
			item.DestRoot = dirItem.DestRoot
			item.DestIsDir = dirItem.DestIsDir
			if item.Stat.IsDir() {
				dirs = append(dirs, item)
			} else {
				files = append(files, item)
			}
			if err := fabric.Send(ctx, w.rank, OutputRank, proto.ExaminedStats, encodeExaminedStats(item.Stat.Size, item.Stat.IsDir())); err != nil {
				return err
			}
		}
		if len(dirs) > 0 {
			if err := fabric.SendItems(ctx, w.rank, ManagerRank, proto.Dir, dirs); err != nil {
				return err
			}
		}
		if len(files) > 0 {
			if err := fabric.SendItems(ctx, w.rank, ManagerRank, proto.Process, files); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleItems runs one Copy over every item in the batch, splitting any
// file at or above chunkAt into chunkSize ranges first - the worker-side
// equivalent of the source's copy_file / chunk-and-dispatch path.
func (w *Worker) handleItems(ctx context.Context, fabric Fabric, frame Frame) error {
	for _, item := range frame.Items {
		if item.Stat.IsDir() {
			continue
		}
		ranges := chunk.Plan(item.Stat.Size, w.chunkAt, w.chunkSize)
		chunked := len(ranges) > 1
		if w.accumulator != nil && chunked {
			w.accumulator.Register(item.Path, item.Stat.Size, w.chunkAt, w.chunkSize)
		}
		for _, r := range ranges {
			if w.accumulator != nil && chunked && !w.accumulator.TryClaim(item.Path, r.Index) {
				continue
			}
			piece := item
			piece.ChkIdx = r.Index
			piece.ChkSz = 0
			if chunked {
				piece.ChkSz = w.chunkSize
			}
			dst := piece
			dst.Path = pathutil.OutputPath(item.Base, item.Path, item.DestRoot, item.DestIsDir, w.recurse)
			dst.FType = piece.DestType
			if err := engine.Copy(ctx, piece, dst, w.blockSize, w.rank, w.selector, nil); err != nil {
				return errors.Wrapf(err, "copy failed for %s", item.Path)
			}
			fileDone := !chunked
			if w.accumulator != nil && chunked {
				fileDone = w.accumulator.MarkDone(item.Path, r.Index)
			}
			if fileDone {
				if err := fabric.Send(ctx, w.rank, OutputRank, proto.CopyStats, encodeInt64(item.Stat.Size)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// StatItem lstats path and fills in a PathItem's FType from the mode bits,
// tagging symlinks as Link and everything else as Regular/Dir - the finer
// FileType values (Plfs/Fuse/Synth/Tape/Premigrated/Migrated) are assigned
// by the caller that already knows which backend a subtree belongs to.
// Exported so cmd/pftool can stat the job's top-level sources the same way
// workers stat directory children.
func StatItem(path string) (model.PathItem, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return model.PathItem{}, errors.Wrapf(err, "failed to stat path %s", path)
	}
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return model.PathItem{}, errors.Errorf("unsupported stat_t for %s", path)
	}
	st := model.Stat{
		Mode:  uint32(sys.Mode),
		Size:  info.Size(),
		UID:   sys.Uid,
		GID:   sys.Gid,
		ATime: time.Unix(sys.Atim.Sec, sys.Atim.Nsec),
		MTime: time.Unix(sys.Mtim.Sec, sys.Mtim.Nsec),
		NLink: uint64(sys.Nlink),
		Ino:   sys.Ino,
		Dev:   uint64(sys.Dev),
	}
	item := model.PathItem{Path: path, Stat: st, FType: model.Regular}
	if st.IsDir() {
		item.FType = model.Dir
	} else if st.IsSymlink() {
		item.FType = model.Link
	}
	return item, nil
}

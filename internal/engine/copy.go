// Package engine implements the chunked copy and compare engine: turning a
// single PathItem (possibly one chunk of a larger file) into the open/
// read/write/close sequence against whichever backend model.FileType
// resolves to. Grounded on desync's copy.go/assemble.go worker-loop shape
// (bounded-block read/write, running `completed` counter, context
// cancellation on first error), adapted from whole-chunk-store GetChunk/
// StoreChunk semantics to the source's byte-range-with-explicit-offset
// semantics.
package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hpc-pftool/pftool/internal/iobackend"
	"github.com/hpc-pftool/pftool/internal/model"
)

// Copy implements spec.md §4.5's contract: a symlink is recreated verbatim;
// otherwise the item's chunk byte range is read from src and written to dst
// in blockSize-sized steps, shrinking blockSize to the range length when
// the range is smaller. Any short read or short write is a non-fatal,
// per-item failure - the caller (internal/cluster's Worker) is responsible
// for classifying the returned error and reporting it via errsend; Copy
// itself never aborts the job.
func Copy(ctx context.Context, src, dst model.PathItem, blockSize int64, rank int, selector iobackend.Selector, synth *iobackend.Synth) error {
	if src.Stat.IsSymlink() {
		return copySymlink(src, dst, selector)
	}

	offset := src.Offset()
	length := src.Length()

	if length < blockSize {
		blockSize = length
	}
	var buf []byte
	if length > 0 {
		buf = make([]byte, blockSize)
	}

	srcBackend := selector.Select(src.FType)
	srcHandle, err := srcBackend.Open(src.Path, iobackend.ReadOnly)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s for read", src.Path)
	}

	flags := destFlags(dst, offset, length)
	dstBackend := selector.Select(dst.DestType)
	dstHandle, err := dstBackend.Open(dst.Path, flags)
	if err != nil {
		srcHandle.Close()
		return errors.Wrapf(err, "failed to open file %s for write", dst.Path)
	}

	var completed int64
	for completed != length {
		select {
		case <-ctx.Done():
			srcHandle.Close()
			dstHandle.Close()
			return ctx.Err()
		default:
		}
		n := blockSize
		if remaining := length - completed; remaining < n {
			n = remaining
		}
		chunkBuf := buf[:n]

		var got int
		if synth != nil {
			got, err = synth.Fill(chunkBuf)
		} else {
			got, err = srcHandle.ReadAt(chunkBuf, offset+completed)
		}
		if err != nil || int64(got) != n {
			srcHandle.Close()
			dstHandle.Close()
			return errors.Wrapf(err, "%s: read %d bytes instead of %d", src.Path, got, n)
		}

		got, err = dstHandle.WriteAt(chunkBuf, offset+completed)
		if err != nil || int64(got) != n {
			srcHandle.Close()
			dstHandle.Close()
			return errors.Wrapf(err, "%s: write %d bytes instead of %d", dst.Path, got, n)
		}
		completed += n
	}

	if err := srcHandle.Close(); err != nil {
		return errors.Wrapf(err, "failed to close file: %s", src.Path)
	}
	if err := dstHandle.Close(); err != nil {
		return errors.Wrapf(err, "failed to close file: %s (errno)", dst.Path)
	}

	if offset == 0 && length == src.Stat.Size {
		if err := updateStats(src, dst, selector); err != nil {
			return err
		}
	}
	return nil
}

func copySymlink(src, dst model.PathItem, selector iobackend.Selector) error {
	srcBackend := selector.Select(src.FType)
	target, err := srcBackend.ReadLink(src.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to read link %s", src.Path)
	}
	dstBackend := selector.Select(dst.DestType)
	if err := dstBackend.Symlink(target, dst.Path); err != nil {
		return errors.Wrapf(err, "failed to create symlink %s -> %s", dst.Path, target)
	}
	return updateStats(src, dst, selector)
}

// destFlags resolves Open Question 2: add ConcurrentWrite when the
// destination is a parallel filesystem (PanasasFS) and this write is not a
// whole-file-from-offset-0 write. A bare O_WRONLY|O_CREAT suffices
// otherwise - including for every non-panfs destination and for any write
// that covers the complete file starting at offset 0.
func destFlags(dst model.PathItem, offset, length int64) iobackend.OpenFlag {
	wholeFile := offset == 0 && length == dst.Stat.Size
	flags := iobackend.WriteOnly | iobackend.Create
	if dst.FsType == model.PanasasFS && !wholeFile {
		flags |= iobackend.ConcurrentWrite
	}
	return flags
}

// updateStats chowns, chmods (mode & 07777), and sets atime/mtime on the
// destination to match the source - skipping chmod/utime for symlinks,
// since lchown already ran and a symlink has no independent permissions or
// times worth preserving.
func updateStats(src, dst model.PathItem, selector iobackend.Selector) error {
	backend := selector.Select(dst.DestType)
	owner := iobackend.Owner{UID: src.Stat.UID, GID: src.Stat.GID}
	if err := backend.Chown(dst.Path, owner); err != nil {
		return errors.Wrapf(err, "failed to change ownership of file: %s to %d:%d", dst.Path, owner.UID, owner.GID)
	}
	if src.Stat.IsSymlink() {
		return nil
	}
	mode := src.Stat.Mode & 0o7777
	if err := backend.Chmod(dst.Path, mode); err != nil {
		return errors.Wrapf(err, "failed to chmod file: %s to %o", dst.Path, mode)
	}
	if err := backend.Utime(dst.Path, src.Stat.ATime, src.Stat.MTime); err != nil {
		return errors.Wrapf(err, "failed to set atime and mtime for file: %s", dst.Path)
	}
	return nil
}

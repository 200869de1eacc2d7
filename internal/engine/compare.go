package engine

import (
	"bytes"
	"context"

	"github.com/pkg/errors"

	"github.com/hpc-pftool/pftool/internal/iobackend"
	"github.com/hpc-pftool/pftool/internal/model"
)

// Verdict is the tri-state result of a Compare: a destination can be
// missing entirely, present but different, or present and equal.
type Verdict int

const (
	Equal Verdict = iota
	Different
	Missing
)

func (v Verdict) String() string {
	switch v {
	case Equal:
		return "EQUAL"
	case Different:
		return "DIFFERENT"
	case Missing:
		return "MISSING"
	default:
		return "UNKNOWN"
	}
}

// Compare implements spec.md §4.6's policy. dstExists distinguishes a
// destination that was never stat-able (Missing) from one that was and
// differs in size or content (Different). size, mode, uid, gid, and mtime
// (mtime exempted for symlinks) gate every compare, metaOnly or not - a
// mismatch on any of those is Different before a single byte is read.
// metaOnly then decides whether matching metadata alone is enough to call it
// Equal; otherwise equal-size, equal-metadata files are compared byte range
// by byte range in blockSize steps, returning Different on the first
// mismatching chunk without reading the rest of the file.
func Compare(ctx context.Context, src, dst model.PathItem, dstExists bool, blockSize int64, metaOnly bool, selector iobackend.Selector) (Verdict, error) {
	if !dstExists {
		return Missing, nil
	}
	if src.Stat.Size != dst.Stat.Size {
		return Different, nil
	}
	if src.Stat.Mode&0o7777 != dst.Stat.Mode&0o7777 ||
		src.Stat.UID != dst.Stat.UID ||
		src.Stat.GID != dst.Stat.GID ||
		(!src.Stat.MTime.Equal(dst.Stat.MTime) && !src.Stat.IsSymlink()) {
		return Different, nil
	}
	if metaOnly {
		return Equal, nil
	}

	offset := src.Offset()
	length := src.Length()
	if length == 0 {
		return Equal, nil
	}
	if length < blockSize {
		blockSize = length
	}

	srcBackend := selector.Select(src.FType)
	srcHandle, err := srcBackend.Open(src.Path, iobackend.ReadOnly)
	if err != nil {
		return Missing, errors.Wrapf(err, "failed to open file %s for compare", src.Path)
	}
	defer srcHandle.Close()

	dstBackend := selector.Select(dst.DestType)
	dstHandle, err := dstBackend.Open(dst.Path, iobackend.ReadOnly)
	if err != nil {
		return Missing, errors.Wrapf(err, "failed to open file %s for compare", dst.Path)
	}
	defer dstHandle.Close()

	srcBuf := make([]byte, blockSize)
	dstBuf := make([]byte, blockSize)

	var completed int64
	for completed != length {
		select {
		case <-ctx.Done():
			return Different, ctx.Err()
		default:
		}
		n := blockSize
		if remaining := length - completed; remaining < n {
			n = remaining
		}

		sGot, err := srcHandle.ReadAt(srcBuf[:n], offset+completed)
		if err != nil || int64(sGot) != n {
			return Different, errors.Wrapf(err, "%s: read %d bytes instead of %d during compare", src.Path, sGot, n)
		}
		dGot, err := dstHandle.ReadAt(dstBuf[:n], offset+completed)
		if err != nil || int64(dGot) != n {
			return Different, errors.Wrapf(err, "%s: read %d bytes instead of %d during compare", dst.Path, dGot, n)
		}
		if !bytes.Equal(srcBuf[:n], dstBuf[:n]) {
			return Different, nil
		}
		completed += n
	}
	return Equal, nil
}

// Package iobackend defines the narrow capability trait every pluggable
// storage backend (POSIX, FUSE-chunker, tape-over-SFTP, synthetic data, and
// the PLFS stub) satisfies, replacing the source's compile-time #ifdef
// families (PLFS, FUSE_CHUNKER, TAPE, GEN_SYNDATA) with a runtime selection
// keyed on model.FileType. Grounded on desync's store.go / storerouter.go
// (a small Store interface selected by URL scheme at runtime) adapted from
// whole-chunk GetChunk/StoreChunk semantics to POSIX-style byte-range
// read/write plus chown/chmod/utime/symlink semantics; there is no stat
// operation on the trait.
package iobackend

import (
	"io"
	"time"

	"github.com/hpc-pftool/pftool/internal/model"
)

// OpenFlag mirrors the handful of open(2) flags the copy engine needs to
// select between; kept as our own type rather than reusing syscall.O_* so
// backends that have no real open(2) (tape-over-SFTP, synth) aren't forced
// to depend on syscall semantics they don't have.
type OpenFlag int

const (
	ReadOnly OpenFlag = 1 << iota
	WriteOnly
	Create
	// ConcurrentWrite is set in addition to WriteOnly|Create when the
	// destination is a parallel filesystem (FsKind PanasasFS) and the write
	// isn't a whole-file-from-offset-0 write - the Go analogue of the
	// source's O_CONCURRENT_WRITE.
	ConcurrentWrite
)

// Handle is an open file-like object on one of the pluggable backends.
type Handle interface {
	ReadAt(buf []byte, off int64) (int, error)
	WriteAt(buf []byte, off int64) (int, error)
	Close() error
}

// Owner carries the uid/gid update_stats applies after a whole-file copy.
type Owner struct {
	UID, GID uint32
}

// Backend is the narrow surface every pluggable I/O backend must provide:
// open for read/write, and the metadata operations update_stats needs
// (chown/chmod/utime). Symlink creation and link reading live here too, so
// each backend makes links in its own namespace (the tape backend creates
// them on the gateway over SFTP).
type Backend interface {
	Open(path string, flags OpenFlag) (Handle, error)
	Chown(path string, owner Owner) error
	Chmod(path string, mode uint32) error
	Utime(path string, atime, mtime time.Time) error
	Symlink(target, linkPath string) error
	ReadLink(path string) (string, error)
}

// Selector resolves the backend responsible for a given PathItem's file
// type, the runtime replacement for the source's #ifdef PLFS / FUSE_CHUNKER
// / TAPE / GEN_SYNDATA compile-time selection.
type Selector interface {
	Select(ftype model.FileType) Backend
}

var _ io.ReaderAt = (Handle)(nil)
var _ io.WriterAt = (Handle)(nil)

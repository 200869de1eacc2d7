package iobackend

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/xattr"
)

// FuseChunker is a narrow client of an already-mounted FUSE-chunker
// directory: pftool doesn't implement a FUSE server here (that's a
// different concern - see DESIGN.md - the original's FUSE_CHUNKER feature
// only ever reads/writes through a path the kernel has already mounted for
// it), it just needs to read and write ordinary files through that mount and
// track each sub-chunk's owner/mtime as an extended attribute the way
// original_source's set_fuse_chunk_attr/get_fuse_chunk_attr did with raw
// getxattr/setxattr. Grounded on the xattr usage in desync's localfs.go,
// using github.com/pkg/xattr's typed API in place of the raw syscalls.
type FuseChunker struct {
	posix POSIX
}

func NewFuseChunker() *FuseChunker { return &FuseChunker{} }

func (f *FuseChunker) Open(path string, flags OpenFlag) (Handle, error) {
	return f.posix.Open(path, flags)
}

func (f *FuseChunker) Chown(path string, owner Owner) error { return f.posix.Chown(path, owner) }
func (f *FuseChunker) Chmod(path string, mode uint32) error { return f.posix.Chmod(path, mode) }
func (f *FuseChunker) Utime(path string, atime, mtime time.Time) error {
	return f.posix.Utime(path, atime, mtime)
}
func (f *FuseChunker) Symlink(target, linkPath string) error { return f.posix.Symlink(target, linkPath) }
func (f *FuseChunker) ReadLink(path string) (string, error)  { return f.posix.ReadLink(path) }

// chunkAttrName names the xattr a given chunk index's metadata lives under,
// mirroring original_source's "user.chunk_%d" naming.
func chunkAttrName(chunkIndex int) string {
	return fmt.Sprintf("user.chunk_%d", chunkIndex)
}

// SetChunkAttr records a sub-chunk's atime/mtime/uid/gid as an xattr on the
// fuse-chunked file, replacing original_source's set_fuse_chunk_attr.
func (f *FuseChunker) SetChunkAttr(path string, chunkIndex int, atime, mtime time.Time, uid, gid uint32) error {
	value := fmt.Sprintf("%d %d %d %d", atime.Unix(), mtime.Unix(), uid, gid)
	err := xattr.Set(path, chunkAttrName(chunkIndex), []byte(value))
	return errors.Wrapf(err, "set fuse chunk attr on %s", path)
}

// ChunkAttr is the decoded form of a fuse chunk xattr.
type ChunkAttr struct {
	ATime, MTime time.Time
	UID, GID     uint32
}

// GetChunkAttr reads back what SetChunkAttr wrote, replacing
// original_source's get_fuse_chunk_attr.
func (f *FuseChunker) GetChunkAttr(path string, chunkIndex int) (ChunkAttr, error) {
	raw, err := xattr.Get(path, chunkAttrName(chunkIndex))
	if err != nil {
		return ChunkAttr{}, errors.Wrapf(err, "get fuse chunk attr on %s", path)
	}
	fields := strings.Fields(string(raw))
	if len(fields) != 4 {
		return ChunkAttr{}, errors.Errorf("malformed fuse chunk attr %q on %s", raw, path)
	}
	atimeSec, err1 := strconv.ParseInt(fields[0], 10, 64)
	mtimeSec, err2 := strconv.ParseInt(fields[1], 10, 64)
	uid, err3 := strconv.ParseUint(fields[2], 10, 32)
	gid, err4 := strconv.ParseUint(fields[3], 10, 32)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return ChunkAttr{}, errors.Errorf("malformed fuse chunk attr %q on %s", raw, path)
	}
	return ChunkAttr{
		ATime: time.Unix(atimeSec, 0),
		MTime: time.Unix(mtimeSec, 0),
		UID:   uint32(uid),
		GID:   uint32(gid),
	}, nil
}

// ChunkSizeFromLink reads a fuse-chunk symlink's target and pulls the chunk
// size out of its basename, replacing original_source's
// set_fuse_chunk_data: the original split the link's basename on '.' and
// took the fourth field as a byte count (e.g. "data.0001.000000.1048576").
func ChunkSizeFromLink(linkPath string) (int64, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		return 0, errors.Wrapf(err, "readlink %s", linkPath)
	}
	base := target
	if idx := strings.LastIndexByte(target, '/'); idx >= 0 {
		base = target[idx+1:]
	}
	fields := strings.Split(base, ".")
	if len(fields) < 4 {
		return 0, errors.Errorf("fuse chunk link target %q has no chunk-size field", target)
	}
	size, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse fuse chunk size from %q", target)
	}
	return size, nil
}

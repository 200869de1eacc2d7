package iobackend

import (
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// POSIX is the default backend: a thin wrapper over os.OpenFile and the
// os/syscall chown/chmod/utime calls, grounded on desync's localfs.go
// (os.Chown, syscall.Chmod, os.Chtimes, symlink handling via os.Symlink /
// os.Readlink).
type POSIX struct{}

func NewPOSIX() *POSIX { return &POSIX{} }

func (POSIX) Open(path string, flags OpenFlag) (Handle, error) {
	var osFlags int
	switch {
	case flags&WriteOnly != 0:
		osFlags = os.O_WRONLY
		if flags&Create != 0 {
			osFlags |= os.O_CREATE
		}
	default:
		osFlags = os.O_RDONLY
	}
	f, err := os.OpenFile(path, osFlags, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return posixHandle{f}, nil
}

type posixHandle struct{ f *os.File }

func (h posixHandle) ReadAt(buf []byte, off int64) (int, error)  { return h.f.ReadAt(buf, off) }
func (h posixHandle) WriteAt(buf []byte, off int64) (int, error) { return h.f.WriteAt(buf, off) }
func (h posixHandle) Close() error                               { return h.f.Close() }

func (POSIX) Chown(path string, owner Owner) error {
	return errors.Wrapf(os.Lchown(path, int(owner.UID), int(owner.GID)), "lchown %s", path)
}

func (POSIX) Chmod(path string, mode uint32) error {
	return errors.Wrapf(syscall.Chmod(path, mode), "chmod %s", path)
}

func (POSIX) Utime(path string, atime, mtime time.Time) error {
	return errors.Wrapf(os.Chtimes(path, atime, mtime), "utime %s", path)
}

func (POSIX) Symlink(target, linkPath string) error {
	return errors.Wrapf(os.Symlink(target, linkPath), "symlink %s -> %s", linkPath, target)
}

func (POSIX) ReadLink(path string) (string, error) {
	s, err := os.Readlink(path)
	return s, errors.Wrapf(err, "readlink %s", path)
}

package iobackend

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Tape is a narrow shim for files staged off nearline tape: the vendor
// DMAPI/GPFS-inode-scan introspection that decides *whether* a file is
// premigrated/migrated stays out of scope (spec.md §1), but once a file is
// reachable it still needs the same narrow read/write/stat surface every
// other backend provides. In practice tape gateways in HPC centers expose
// staged files over an SFTP-reachable host, so Tape is realized as an SFTP
// client against that gateway rather than a local filesystem path.
type Tape struct {
	client *sftp.Client
}

// NewTape dials the tape gateway over SSH and wraps the resulting
// connection in an SFTP client. The caller owns the lifetime of the
// returned Tape and should Close it when the job's tape work is done.
func NewTape(addr string, config *ssh.ClientConfig) (*Tape, error) {
	conn, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, errors.Wrapf(err, "dial tape gateway %s", addr)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open sftp session to tape gateway")
	}
	return &Tape{client: client}, nil
}

func (t *Tape) Close() error {
	return t.client.Close()
}

func (t *Tape) Open(path string, flags OpenFlag) (Handle, error) {
	if flags&WriteOnly != 0 {
		f, err := t.client.Create(path)
		if err != nil {
			return nil, errors.Wrapf(err, "sftp create %s", path)
		}
		return tapeHandle{f}, nil
	}
	f, err := t.client.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sftp open %s", path)
	}
	return tapeHandle{f}, nil
}

type tapeHandle struct{ f *sftp.File }

func (h tapeHandle) ReadAt(buf []byte, off int64) (int, error)  { return h.f.ReadAt(buf, off) }
func (h tapeHandle) WriteAt(buf []byte, off int64) (int, error) { return h.f.WriteAt(buf, off) }
func (h tapeHandle) Close() error                               { return h.f.Close() }

func (t *Tape) Chown(path string, owner Owner) error {
	return errors.Wrapf(t.client.Chown(path, int(owner.UID), int(owner.GID)), "sftp chown %s", path)
}

func (t *Tape) Chmod(path string, mode uint32) error {
	return errors.Wrapf(t.client.Chmod(path, os.FileMode(mode)), "sftp chmod %s", path)
}

func (t *Tape) Utime(path string, atime, mtime time.Time) error {
	return errors.Wrapf(t.client.Chtimes(path, atime, mtime), "sftp utime %s", path)
}

func (t *Tape) Symlink(target, linkPath string) error {
	return errors.Wrapf(t.client.Symlink(target, linkPath), "sftp symlink %s -> %s", linkPath, target)
}

func (t *Tape) ReadLink(path string) (string, error) {
	s, err := t.client.ReadLink(path)
	return s, errors.Wrapf(err, "sftp readlink %s", path)
}

package iobackend

import (
	"time"

	"github.com/pkg/errors"
)

// ErrUnsupportedBackend is returned by every PLFS operation: PLFS container
// I/O is explicitly out of scope (spec.md §1, "pluggable I/O backend
// exposing a narrow read/write/stat surface") and no PLFS Go binding exists
// in the examples pack or the wider ecosystem (DESIGN.md). PLFS stays an
// interface-only stub so Selector can still route model.Plfs items
// somewhere without the engine special-casing the file type.
var ErrUnsupportedBackend = errors.New("plfs backend not available in this build")

type PLFS struct{}

func NewPLFS() *PLFS { return &PLFS{} }

func (PLFS) Open(string, OpenFlag) (Handle, error)          { return nil, ErrUnsupportedBackend }
func (PLFS) Chown(string, Owner) error                      { return ErrUnsupportedBackend }
func (PLFS) Chmod(string, uint32) error                      { return ErrUnsupportedBackend }
func (PLFS) Utime(string, time.Time, time.Time) error        { return ErrUnsupportedBackend }
func (PLFS) Symlink(string, string) error                    { return ErrUnsupportedBackend }
func (PLFS) ReadLink(string) (string, error)                 { return "", ErrUnsupportedBackend }

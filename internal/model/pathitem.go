// Package model defines the fixed-layout records that cross the wire between
// pftool ranks: PathItem and the stat snapshot and type tags it carries.
package model

import "time"

// PathSizePlus is the source's PATHSIZE_PLUS path-length bound (declared
// generously larger than PATH_MAX to leave room for destination-path
// splicing). PathItem.Path is a plain string, and no code in this module
// checks path lengths against this constant.
const PathSizePlus = 4096 + 256

// FileType tags which source-side (or destination-side) backend a PathItem
// belongs to. The zero value is Regular.
type FileType int

const (
	Regular FileType = iota
	Link
	Dir
	Plfs
	Fuse
	Synth
	Tape
	Premigrated
	Migrated
)

func (t FileType) String() string {
	switch t {
	case Regular:
		return "regular"
	case Link:
		return "link"
	case Dir:
		return "dir"
	case Plfs:
		return "plfs"
	case Fuse:
		return "fuse"
	case Synth:
		return "synth"
	case Tape:
		return "tape"
	case Premigrated:
		return "premigrated"
	case Migrated:
		return "migrated"
	default:
		return "unknown"
	}
}

// FsKind is the destination filesystem's kind, as distinguished by
// statfs(2)'s f_type magic values in the source. The concrete probe is an
// external collaborator (see FsProber); FsKind is only the result type.
type FsKind string

const (
	GPFSFS    FsKind = "gpfs"
	PanasasFS FsKind = "panfs"
	AnyFS     FsKind = "anyfs"
)

// FsProber is the oracle the core consumes instead of owning: a concrete
// statfs-based probe is out of scope (spec.md §1). Symlinks always report
// GPFSFS for the purposes of open-flag selection, and an unrecognized magic
// value maps to AnyFS - both per spec.md §6 - but computing that from a live
// filesystem is the caller's job.
type FsProber interface {
	Probe(path string) (FsKind, error)
}

// Stat is a POSIX stat(2) snapshot carried by value in every PathItem,
// trimmed to the fields the copy/compare engine and update_stats actually
// consult.
type Stat struct {
	Mode  uint32
	Size  int64
	UID   uint32
	GID   uint32
	ATime time.Time
	MTime time.Time
	NLink uint64
	Ino   uint64
	Dev   uint64
}

// IsDir reports whether the snapshotted mode bits describe a directory.
func (s Stat) IsDir() bool { return s.Mode&0o170000 == 0o040000 }

// IsSymlink reports whether the snapshotted mode bits describe a symlink.
func (s Stat) IsSymlink() bool { return s.Mode&0o170000 == 0o120000 }

// PathItem is the universal currency of the cluster: a fixed-size record
// describing one filesystem object, or one chunk of it, copied by value over
// the wire and never mutated in place after being packed.
type PathItem struct {
	Path     string
	Stat     Stat
	FType    FileType
	DestType FileType
	FsType   FsKind
	ChkIdx   int
	ChkSz    int64

	// Base and DestRoot place this item within the walk it was discovered
	// under: Base is the source-side root a relative path is measured from
	// (pathutil.BasePath of the top-level source), DestRoot is the
	// resolved destination root that tree maps onto (pathutil.DestPath of
	// the same top-level source). Both are inherited unchanged as a
	// directory is walked, letting pathutil.OutputPath recompute each
	// discovered file's destination without re-deriving the walk's root.
	Base      string
	DestRoot  string
	DestIsDir bool
}

// Pack returns a value copy of the item, the Go rendering of "a PathItem is
// never mutated in place after being packed; workers receive a fresh copy."
func (p PathItem) Pack() PathItem {
	return p
}

// Offset and Length compute this item's chunk byte range within the
// underlying file: offset = chkidx*chksz, length = min(chksz, size-offset).
// chksz == 0 means the item covers the whole file starting at offset 0.
func (p PathItem) Offset() int64 {
	if p.ChkSz == 0 {
		return 0
	}
	return int64(p.ChkIdx) * p.ChkSz
}

func (p PathItem) Length() int64 {
	if p.ChkSz == 0 {
		return p.Stat.Size
	}
	off := p.Offset()
	remaining := p.Stat.Size - off
	if remaining < 0 {
		remaining = 0
	}
	if remaining < p.ChkSz {
		return remaining
	}
	return p.ChkSz
}

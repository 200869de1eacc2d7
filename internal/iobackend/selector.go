package iobackend

import "github.com/hpc-pftool/pftool/internal/model"

// DefaultSelector wires each model.FileType to the backend that handles it,
// the runtime replacement for the source's compile-time #ifdef PLFS /
// FUSE_CHUNKER / TAPE / GEN_SYNDATA feature families (spec.md §9). Regular
// files, directories, and links resolve to POSIX; Plfs, Fuse, and Synth
// resolve to their dedicated backends; Tape and the migration markers
// (Premigrated, Migrated) resolve to the Tape backend when one is set and
// to POSIX otherwise.
type DefaultSelector struct {
	POSIX       Backend
	Fuse        Backend
	Synth       Backend
	Tape        Backend
	Plfs        Backend
}

// NewDefaultSelector builds a selector with sensible defaults for every
// backend that needs no external configuration. Tape is left nil, so tape
// items go to POSIX, and Synth has no pattern, so it fills with zero bytes;
// cmd/pftool uses this selector as built.
func NewDefaultSelector() *DefaultSelector {
	return &DefaultSelector{
		POSIX: NewPOSIX(),
		Fuse:  NewFuseChunker(),
		Synth: NewSynth(nil),
		Tape:  nil,
		Plfs:  NewPLFS(),
	}
}

func (s *DefaultSelector) Select(ftype model.FileType) Backend {
	switch ftype {
	case model.Fuse:
		return s.Fuse
	case model.Synth:
		return s.Synth
	case model.Tape, model.Premigrated, model.Migrated:
		if s.Tape != nil {
			return s.Tape
		}
		return s.POSIX
	case model.Plfs:
		return s.Plfs
	default:
		return s.POSIX
	}
}

package iobackend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hpc-pftool/pftool/internal/model"
)

func TestDefaultSelectorRoutesByFileType(t *testing.T) {
	s := NewDefaultSelector()

	assert.Same(t, s.POSIX, s.Select(model.Regular))
	assert.Same(t, s.POSIX, s.Select(model.Dir))
	assert.Same(t, s.POSIX, s.Select(model.Link))
	assert.Same(t, s.Fuse, s.Select(model.Fuse))
	assert.Same(t, s.Synth, s.Select(model.Synth))
	assert.Same(t, s.Plfs, s.Select(model.Plfs))
}

func TestDefaultSelectorTapeFallsBackToPOSIXWhenUnset(t *testing.T) {
	s := NewDefaultSelector()
	assert.Same(t, s.POSIX, s.Select(model.Tape))
	assert.Same(t, s.POSIX, s.Select(model.Premigrated))
	assert.Same(t, s.POSIX, s.Select(model.Migrated))
}

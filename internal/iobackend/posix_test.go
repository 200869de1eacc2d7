package iobackend

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOSIXOpenReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	p := NewPOSIX()
	h, err := p.Open(path, WriteOnly|Create)
	require.NoError(t, err)
	n, err := h.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, h.Close())

	h, err = p.Open(path, ReadOnly)
	require.NoError(t, err)
	buf := make([]byte, 5)
	n, err = h.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
	require.NoError(t, h.Close())
}

func TestPOSIXChmod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	p := NewPOSIX()
	require.NoError(t, p.Chmod(path, 0o600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPOSIXUtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	p := NewPOSIX()
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, p.Utime(path, mtime, mtime))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, mtime, info.ModTime(), time.Second)
}

func TestPOSIXSymlinkAndReadLink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(dir, "link")

	p := NewPOSIX()
	require.NoError(t, p.Symlink(target, link))

	got, err := p.ReadLink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

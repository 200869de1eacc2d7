package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-pftool/pftool/internal/iobackend"
	"github.com/hpc-pftool/pftool/internal/model"
)

func statItem(t *testing.T, path string) model.PathItem {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	mode := uint32(0o100644)
	if info.IsDir() {
		mode = 0o040755
	}
	return model.PathItem{
		Path: path,
		Stat: model.Stat{
			Mode:  mode,
			Size:  info.Size(),
			ATime: time.Now(),
			MTime: time.Now(),
		},
	}
}

func TestCopyWholeFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.txt")
	dstPath := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("hello world"), 0o644))

	src := statItem(t, srcPath)
	dst := src
	dst.Path = dstPath

	selector := iobackend.NewDefaultSelector()
	require.NoError(t, Copy(context.Background(), src, dst, 4, 3, selector, nil))

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestCopySymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	src := model.PathItem{
		Path: link,
		Stat: model.Stat{Mode: 0o120777, Size: info.Size()},
	}
	dst := src
	dst.Path = filepath.Join(dir, "linkcopy")

	selector := iobackend.NewDefaultSelector()
	require.NoError(t, Copy(context.Background(), src, dst, 4, 3, selector, nil))

	got, err := os.Readlink(dst.Path)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestCopyChunkRange(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.bin")
	dstPath := filepath.Join(dir, "dst.bin")
	data := []byte("0123456789")
	require.NoError(t, os.WriteFile(srcPath, data, 0o644))
	require.NoError(t, os.WriteFile(dstPath, make([]byte, len(data)), 0o644))

	src := statItem(t, srcPath)
	src.ChkIdx = 1
	src.ChkSz = 4 // offset 4, length min(4, 10-4)=4
	dst := src
	dst.Path = dstPath

	selector := iobackend.NewDefaultSelector()
	require.NoError(t, Copy(context.Background(), src, dst, 2, 3, selector, nil))

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"[4:8]), got[4:8])
}

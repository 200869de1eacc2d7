package cluster

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
	"github.com/hpc-pftool/pftool/internal/proto"
)

func TestStatItemRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	item, err := StatItem(path)
	require.NoError(t, err)
	assert.Equal(t, model.Regular, item.FType)
	assert.Equal(t, int64(2), item.Stat.Size)
}

func TestStatItemDirectory(t *testing.T) {
	dir := t.TempDir()
	item, err := StatItem(dir)
	require.NoError(t, err)
	assert.Equal(t, model.Dir, item.FType)
	assert.True(t, item.Stat.IsDir())
}

func TestStatItemSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	item, err := StatItem(link)
	require.NoError(t, err)
	assert.Equal(t, model.Link, item.FType)
}

func TestWorkerHandleItemsCopiesFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("hello"), 0o644))
	dstPath := filepath.Join(dir, "dst.txt")

	item, err := StatItem(srcPath)
	require.NoError(t, err)
	item.DestType = model.Regular
	item.Base = dir
	item.DestRoot = dstPath
	item.DestIsDir = false

	w := NewWorker(FirstWorkerRank, iobackend.NewDefaultSelector(), 4, 0, 0, false, nil)
	frame := Frame{Items: []model.PathItem{item}}
	fabric := NewInProcessFabric(4, 4)

	require.NoError(t, w.handleItems(context.Background(), fabric, frame))

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	statsFrame, err := fabric.Recv(context.Background(), OutputRank)
	require.NoError(t, err)
	assert.Equal(t, proto.CopyStats, statsFrame.Cmd)
}

func TestWorkerHandleItemsChunkedUsesAccumulator(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.bin")
	data := make([]byte, 10)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(srcPath, data, 0o644))
	dstPath := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(dstPath, make([]byte, 10), 0o644))

	item, err := StatItem(srcPath)
	require.NoError(t, err)
	item.DestType = model.Regular
	item.Base = dir
	item.DestRoot = dstPath
	item.DestIsDir = false

	accumulator := NewAccumulator()
	w := NewWorker(FirstWorkerRank, iobackend.NewDefaultSelector(), 2, 0, 3, false, accumulator)
	frame := Frame{Items: []model.PathItem{item}}
	fabric := NewInProcessFabric(4, 4)

	require.NoError(t, w.handleItems(context.Background(), fabric, frame))

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	statsFrame, err := fabric.Recv(context.Background(), OutputRank)
	require.NoError(t, err)
	assert.Equal(t, proto.CopyStats, statsFrame.Cmd, "a chunked file reports CopyStats exactly once, when its last chunk completes")
}

func TestWorkerHandleDirCreatesDestAndReportsChildren(t *testing.T) {
	srcRoot := t.TempDir()
	dstRoot := filepath.Join(t.TempDir(), "out")
	subdir := filepath.Join(srcRoot, "sub")
	require.NoError(t, os.Mkdir(subdir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "file.txt"), []byte("x"), 0o644))

	dirItem, err := StatItem(srcRoot)
	require.NoError(t, err)
	dirItem.Base = srcRoot
	dirItem.DestRoot = dstRoot
	dirItem.DestIsDir = true

	fabric := NewInProcessFabric(4, 4)
	w := NewWorker(FirstWorkerRank, iobackend.NewDefaultSelector(), 4, 0, 0, true, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, w.handleDir(ctx, fabric, Frame{Items: []model.PathItem{dirItem}}))

	info, err := os.Stat(dstRoot)
	require.NoError(t, err, "handleDir should have created the destination directory")
	assert.True(t, info.IsDir())

	seenDir, seenFile := false, false
	for i := 0; i < 2; i++ {
		frame, err := fabric.Recv(ctx, ManagerRank)
		require.NoError(t, err)
		switch frame.Cmd {
		case proto.Dir:
			seenDir = true
		case proto.Process:
			seenFile = true
		}
	}
	assert.True(t, seenDir, "subdirectory should be reported as Dir work")
	assert.True(t, seenFile, "file should be reported as Process work")

	examinedDirs, examinedFiles := 0, 0
	for i := 0; i < 2; i++ {
		frame, err := fabric.Recv(ctx, OutputRank)
		require.NoError(t, err)
		require.Equal(t, proto.ExaminedStats, frame.Cmd)
		if _, isDir := decodeExaminedStats(frame.Body); isDir {
			examinedDirs++
		} else {
			examinedFiles++
		}
	}
	assert.Equal(t, 1, examinedDirs, "the discovered subdirectory must be tagged as a dir, not a file")
	assert.Equal(t, 1, examinedFiles, "the discovered file must be tagged as a file")
}

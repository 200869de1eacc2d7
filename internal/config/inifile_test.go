package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJobDescriptorAppliesPresentKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.ini")
	contents := `[job]
recurse = true
num_workers = 8
block_size = 65536
chunk_at = 1048576
chunk_size = 262144
only_if_different = true
dest_fs_override = panfs
log_path = /var/log/pftool.log
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	opt := &Options{NumWorkers: 1}
	require.NoError(t, LoadJobDescriptor(path, opt))

	assert.True(t, opt.Recurse)
	assert.Equal(t, 8, opt.NumWorkers)
	assert.Equal(t, int64(65536), opt.BlockSize)
	assert.Equal(t, int64(1048576), opt.ChunkAt)
	assert.Equal(t, int64(262144), opt.ChunkSize)
	assert.True(t, opt.OnlyIfDifferent)
	assert.Equal(t, "panfs", opt.DestFsOverride)
	assert.Equal(t, "/var/log/pftool.log", opt.LogPath)
}

func TestLoadJobDescriptorLeavesMissingKeysUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.ini")
	require.NoError(t, os.WriteFile(path, []byte("[job]\nnum_workers = 4\n"), 0o644))

	opt := &Options{NumWorkers: 1, Recurse: true, BlockSize: 99}
	require.NoError(t, LoadJobDescriptor(path, opt))

	assert.Equal(t, 4, opt.NumWorkers)
	assert.True(t, opt.Recurse, "recurse wasn't in the file, so it keeps its prior value")
	assert.Equal(t, int64(99), opt.BlockSize)
}

func TestLoadJobDescriptorBadValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.ini")
	require.NoError(t, os.WriteFile(path, []byte("[job]\nnum_workers = not-a-number\n"), 0o644))

	opt := &Options{}
	err := LoadJobDescriptor(path, opt)
	assert.Error(t, err)
}

func TestLoadJobDescriptorMissingFile(t *testing.T) {
	opt := &Options{}
	err := LoadJobDescriptor("/nonexistent/path.ini", opt)
	assert.Error(t, err)
}

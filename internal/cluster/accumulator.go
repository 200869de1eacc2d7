package cluster

import (
	"sync"

	"github.com/boljen/go-bitmap"
	"github.com/dchest/siphash"

	"github.com/hpc-pftool/pftool/internal/chunk"
)

// Accumulator tracks, per destination file, which chunks have completed so
// the cluster knows when a chunked copy is wholly done (the source's
// accumulator process, which owns one completion bitmap per file being
// chunked). It also arbitrates which chunk of a given file a worker may
// claim next, the Go replacement for the source's CHUNKBUSY message and its
// per-file lock.
type Accumulator struct {
	mu      sync.Mutex
	buckets map[uint64]*fileState
}

type fileState struct {
	total int
	done  bitmap.Bitmap
	busy  map[int]bool
}

// NewAccumulator builds an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{buckets: make(map[uint64]*fileState)}
}

// key hashes a path to a bucket the way the source's CHUNKBUSY handling
// keys its lock table by path, using siphash instead of a linear scan for
// O(1) lookup under concurrent workers.
func key(path string) uint64 {
	return siphash.Hash(0, 0, []byte(path))
}

// Register declares that path has been split into chunkCount chunks of
// size chunkSize covering totalSize bytes, sizing the completion bitmap via
// internal/chunk.Count. Re-registering an already-known path is a no-op.
func (a *Accumulator) Register(path string, totalSize, chunkAt, chunkSize int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := key(path)
	if _, ok := a.buckets[k]; ok {
		return
	}
	n := chunk.Count(totalSize, chunkAt, chunkSize)
	a.buckets[k] = &fileState{
		total: n,
		done:  bitmap.New(n),
		busy:  make(map[int]bool),
	}
}

// TryClaim marks chunkIndex busy for path and reports whether the caller
// won the claim - false means another worker already holds it, the
// CHUNKBUSY response the source sends back to a worker that raced another
// worker for the same chunk.
func (a *Accumulator) TryClaim(path string, chunkIndex int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	fs, ok := a.buckets[key(path)]
	if !ok {
		return false
	}
	if fs.busy[chunkIndex] {
		return false
	}
	fs.busy[chunkIndex] = true
	return true
}

// MarkDone records chunkIndex of path as complete and reports whether every
// chunk of that file is now done, the UPDCHUNK handling that lets the
// manager recognize a fully-copied chunked file and release its bookkeeping.
func (a *Accumulator) MarkDone(path string, chunkIndex int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	fs, ok := a.buckets[key(path)]
	if !ok {
		return false
	}
	fs.done.Set(chunkIndex, true)
	delete(fs.busy, chunkIndex)
	for i := 0; i < fs.total; i++ {
		if !fs.done.Get(i) {
			return false
		}
	}
	delete(a.buckets, key(path))
	return true
}

// Package config defines the job options the CLI parses and the core
// consumes - the Go rendering of the source's struct options populated by
// getopt in pfutils.c's main(), minus the parsing itself, which belongs to
// cmd/pftool.
package config

import "time"

// WorkType selects which top-level operation a job runs.
type WorkType int

const (
	WorkCopy WorkType = iota
	WorkList
	WorkCompare
)

// Options is the fully-resolved set of knobs a Job needs to run. The CLI
// layer is solely responsible for turning flags/env/ini files into an
// Options value; internal/cluster and internal/engine never parse anything
// themselves.
type Options struct {
	Work WorkType

	Sources     []string
	Destination string
	Recurse     bool

	NumWorkers int
	BlockSize  int64
	ChunkAt    int64
	ChunkSize  int64

	OnlyIfDifferent bool
	MetaOnlyCompare bool
	ForceParallelDest bool
	DestFsOverride  string

	FuseChunkDir string
	SynDataSize  int64
	SynDataPattern []byte

	LogToSyslog bool
	LogPath     string

	StartTime time.Time
}

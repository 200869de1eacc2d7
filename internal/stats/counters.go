// Package stats accumulates the run totals the source prints at exit:
// files and bytes copied, files/bytes/dirs examined, and the non-fatal
// error count. All fields are additive and cluster-wide - one Counters
// value per job, fed by the Output rank from CopyStats/ExaminedStats frames
// and by the Manager's NonFatalInc handling.
package stats

import "sync/atomic"

// Counters holds the job's running totals. Every method is safe for
// concurrent use.
type Counters struct {
	copiedFiles     int64
	copiedBytes     int64
	examinedFiles   int64
	examinedBytes   int64
	examinedDirs    int64
	nonFatalErrors  int64
}

func (c *Counters) AddCopied(files, bytes int64) {
	atomic.AddInt64(&c.copiedFiles, files)
	atomic.AddInt64(&c.copiedBytes, bytes)
}

func (c *Counters) AddExamined(files, bytes, dirs int64) {
	atomic.AddInt64(&c.examinedFiles, files)
	atomic.AddInt64(&c.examinedBytes, bytes)
	atomic.AddInt64(&c.examinedDirs, dirs)
}

func (c *Counters) AddNonFatalErrors(n int64) {
	atomic.AddInt64(&c.nonFatalErrors, n)
}

// Snapshot is a point-in-time copy of every counter, suitable for printing
// or for driving a progress bar's total.
type Snapshot struct {
	CopiedFiles    int64
	CopiedBytes    int64
	ExaminedFiles  int64
	ExaminedBytes  int64
	ExaminedDirs   int64
	NonFatalErrors int64
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		CopiedFiles:    atomic.LoadInt64(&c.copiedFiles),
		CopiedBytes:    atomic.LoadInt64(&c.copiedBytes),
		ExaminedFiles:  atomic.LoadInt64(&c.examinedFiles),
		ExaminedBytes:  atomic.LoadInt64(&c.examinedBytes),
		ExaminedDirs:   atomic.LoadInt64(&c.examinedDirs),
		NonFatalErrors: atomic.LoadInt64(&c.nonFatalErrors),
	}
}

package iobackend

import (
	"time"
)

// Synth is the synthetic-data generator backend (GEN_SYNDATA in the
// original): reads are filled from a repeating pattern instead of touching
// any real source file, so copy_file can populate a destination with
// synthetic data of a requested size without reading anything at all.
//
// Resolves Open Question 3 (ambiguous "bytes_processed = buflen after a
// truthy failure-check"): a successful Fill always reports
// bytesProcessed == len(buf), matching the spec's stated resolution "fill
// succeeds => bytes = blocksize".
type Synth struct {
	pattern []byte
	write   POSIX
}

// NewSynth builds a synthetic-data backend that fills reads from pattern,
// repeating it to fill the caller's buffer. A nil/empty pattern fills with
// zero bytes.
func NewSynth(pattern []byte) *Synth {
	return &Synth{pattern: pattern}
}

func (s *Synth) Open(path string, flags OpenFlag) (Handle, error) {
	if flags&ReadOnly != 0 {
		return &synthHandle{pattern: s.pattern}, nil
	}
	return s.write.Open(path, flags)
}

// Fill populates buf from the synthetic pattern, always succeeding and
// always reporting the full buffer length as processed.
func (s *Synth) Fill(buf []byte) (int, error) {
	h := &synthHandle{pattern: s.pattern}
	return h.ReadAt(buf, 0)
}

type synthHandle struct{ pattern []byte }

func (h *synthHandle) ReadAt(buf []byte, _ int64) (int, error) {
	if len(h.pattern) == 0 {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}
	for i := range buf {
		buf[i] = h.pattern[i%len(h.pattern)]
	}
	return len(buf), nil
}

func (h *synthHandle) WriteAt([]byte, int64) (int, error) { return 0, errNotWritable }
func (h *synthHandle) Close() error                       { return nil }

var errNotWritable = synthWriteError{}

type synthWriteError struct{}

func (synthWriteError) Error() string { return "synth backend: read-only handle" }

func (Synth) Chown(string, Owner) error                 { return nil }
func (Synth) Chmod(string, uint32) error                 { return nil }
func (Synth) Utime(string, time.Time, time.Time) error   { return nil }
func (Synth) Symlink(string, string) error               { return errNotWritable }
func (Synth) ReadLink(string) (string, error)            { return "", errNotWritable }

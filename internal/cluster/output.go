package cluster

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hpc-pftool/pftool/internal/proto"
	"github.com/hpc-pftool/pftool/internal/stats"
)

// Output serializes every OUT/LOG/BUFFEROUT frame the way the source's
// single output rank serializes writes from every other rank to stdout and
// the run's log file - the one place in the cluster where concurrent
// writers are funneled through a single writer, avoiding interleaved
// terminal output.
type Output struct {
	log   *logrus.Logger
	stats *stats.Counters
}

// NewOutput builds an Output rank writing through log, and folding
// CopyStats/ExaminedStats/NonFatalInc frames into counters.
func NewOutput(log *logrus.Logger, counters *stats.Counters) *Output {
	return &Output{log: log, stats: counters}
}

// Run drains frames addressed to the Output rank until it sees Exit or the
// context is canceled, exactly the loop the source's output process runs
// around MPI_Recv(MPI_ANY_SOURCE, MPI_ANY_TAG).
func (o *Output) Run(ctx context.Context, fabric Fabric) error {
	for {
		frame, err := fabric.Recv(ctx, OutputRank)
		if err != nil {
			return err
		}
		switch frame.Cmd {
		case proto.Exit:
			return nil
		case proto.Log:
			o.log.WithField("rank", frame.From).Error(string(frame.Body))
		case proto.Out, proto.BufferOut:
			o.log.WithField("rank", frame.From).Info(string(frame.Body))
		case proto.NonFatalInc:
			o.stats.AddNonFatalErrors(1)
		case proto.CopyStats:
			o.stats.AddCopied(1, decodeInt64(frame.Body))
		case proto.ExaminedStats:
			size, isDir := decodeExaminedStats(frame.Body)
			if isDir {
				o.stats.AddExamined(0, 0, 1)
			} else {
				o.stats.AddExamined(1, size, 0)
			}
		}
	}
}

func decodeInt64(b []byte) int64 {
	var v int64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= int64(b[i]) << (8 * uint(i))
	}
	return v
}

// encodeInt64 is decodeInt64's inverse, used by ranks that report a byte
// count (CopyStats, ExaminedStats) to the Output rank.
func encodeInt64(v int64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
	return b
}

// encodeExaminedStats packs an EXAMINEDSTATS body: a leading kind byte
// (1 = directory, 0 = file) followed by the entry's size, so Output can fold
// it into the right half of spec.md §4.1's `int files, double bytes, int
// dirs` counter triple without the file/dir distinction getting lost on the
// wire the way the single-size body did before.
func encodeExaminedStats(size int64, isDir bool) []byte {
	b := make([]byte, 9)
	if isDir {
		b[0] = 1
	}
	copy(b[1:], encodeInt64(size))
	return b
}

// decodeExaminedStats is encodeExaminedStats's inverse.
func decodeExaminedStats(b []byte) (size int64, isDir bool) {
	if len(b) < 9 {
		return decodeInt64(b), false
	}
	return decodeInt64(b[1:]), b[0] == 1
}

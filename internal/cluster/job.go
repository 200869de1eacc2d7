package cluster

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hpc-pftool/pftool/internal/iobackend"
	"github.com/hpc-pftool/pftool/internal/model"
	"github.com/hpc-pftool/pftool/internal/pathutil"
	"github.com/hpc-pftool/pftool/internal/proto"
	"github.com/hpc-pftool/pftool/internal/stats"
)

// queueSizePollInterval is how often Job.Run's monitor asks the manager for
// its input queue length, the Go analogue of a caller spinning on
// request_input_queuesize().
const queueSizePollInterval = 200 * time.Millisecond

// Job wires every role onto one InProcessFabric and runs them under a
// single errgroup, the Go replacement for the source's mpirun launch: one
// goroutine per MPI rank, one cancel for MPI_Abort, one Wait for
// MPI_Finalize.
type Job struct {
	NumWorkers  int
	Selector    iobackend.Selector
	Log         *logrus.Logger
	BlockSize   int64
	ChunkAt     int64
	ChunkSize   int64
	Destination string
	Recurse     bool

	// OnQueueSize, if set, is called with the manager's input queue length
	// every queueSizePollInterval while the job runs, fed by the QUEUESIZE
	// request-response (spec.md §4.1). cmd/pftool wires this to a progress
	// bar; nil disables polling entirely.
	OnQueueSize func(int)
}

// Run resolves each seed PathItem's base and destination root the way the
// source's get_base_path/get_dest_path do before any worker sees it, seeds
// the manager, and runs the cluster to completion, returning the job's
// final counters. A Fatal error from any rank cancels every other rank via
// errgroup's shared context, the analogue of MPI_Abort tearing down every
// process in the communicator.
func (j *Job) Run(ctx context.Context, seed []model.PathItem) (stats.Snapshot, error) {
	destExists := true
	destIsDir := false
	if info, err := os.Stat(j.Destination); err != nil {
		destExists = false
	} else {
		destIsDir = info.IsDir()
	}

	for i := range seed {
		src := seed[i]
		seed[i].Base = pathutil.BasePath(src.Path, false, src.Stat.IsDir())
		seed[i].DestRoot = pathutil.DestPath(src.Path, src.Stat.IsDir(), j.Destination, destExists, destIsDir, j.Recurse, len(seed))
		seed[i].DestIsDir = j.Recurse || destIsDir
	}

	numRanks := FirstWorkerRank + j.NumWorkers
	monitorRank := numRanks
	fabric := NewInProcessFabric(numRanks+1, j.NumWorkers*4)
	counters := &stats.Counters{}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	manager := NewManager(numRanks)
	manager.Seed(seed)

	output := NewOutput(j.Log, counters)
	accumulator := NewAccumulator()

	g.Go(func() error { return output.Run(gctx, fabric) })
	g.Go(func() error { return manager.Run(gctx, fabric, func() { counters.AddNonFatalErrors(1) }) })
	for r := FirstWorkerRank; r < numRanks; r++ {
		worker := NewWorker(r, j.Selector, j.BlockSize, j.ChunkAt, j.ChunkSize, j.Recurse, accumulator)
		g.Go(func() error { return worker.Run(gctx, fabric, cancel) })
	}

	// The queue-size monitor runs outside the errgroup on its own
	// cancellation: the manager stops answering QUEUESIZE the moment it goes
	// idle and broadcasts Exit, and that happens before g.Wait() returns, so
	// a monitor inside the group would have to be waited on by the very
	// Wait() call that's supposed to stop it.
	monitorCtx, monitorCancel := context.WithCancel(ctx)
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		j.pollQueueSize(monitorCtx, fabric, monitorRank)
	}()

	err := g.Wait()
	monitorCancel()
	<-monitorDone
	for r := 0; r <= numRanks; r++ {
		fabric.Close(r)
	}
	return counters.Snapshot(), err
}

// pollQueueSize drives OnQueueSize by repeatedly asking the manager for its
// input queue length over the fabric, the Go rendering of a caller spinning
// on request_input_queuesize(). It returns as soon as ctx is done or a
// send/recv fails. Once the manager rank stops answering, the pending Recv
// only ends when ctx is cancelled, which Run does after g.Wait() returns.
func (j *Job) pollQueueSize(ctx context.Context, fabric Fabric, monitorRank int) {
	if j.OnQueueSize == nil {
		return
	}
	ticker := time.NewTicker(queueSizePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fabric.Send(ctx, monitorRank, ManagerRank, proto.QueueSize, nil); err != nil {
				return
			}
			frame, err := fabric.Recv(ctx, monitorRank)
			if err != nil {
				return
			}
			if frame.Cmd == proto.QueueSize {
				j.OnQueueSize(int(decodeInt64(frame.Body)))
			}
		}
	}
}

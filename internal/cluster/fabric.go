package cluster

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/hpc-pftool/pftool/internal/model"
	"github.com/hpc-pftool/pftool/internal/proto"
)

// Frame is one rank-to-rank message: the MPI send/recv pair
// (command tag, payload) collapsed onto a Go channel. Body carries
// scalar/text payloads (log lines, counters); Items carries a packed batch
// of PathItems for the Category commands (proto.Command.Category). A real
// wire transport would flatten Items through the WriteInt/WriteBytes
// framing proto.Conn provides (message.go); in-process, the packed
// WorkBuf is handed across the channel directly rather than paying for a
// round-trip through bytes.
type Frame struct {
	From  int
	To    int
	Cmd   proto.Command
	Body  []byte
	Items []model.PathItem
}

// Fabric is the transport every role talks through. It stands in for the
// MPI communicator the source passes implicitly via MPI_COMM_WORLD: Send
// targets a rank the way the source's MPI_Send targets a destination rank,
// and Recv blocks for the next frame addressed to a rank the way
// MPI_Recv(MPI_ANY_TAG) does.
type Fabric interface {
	Send(ctx context.Context, from, to int, cmd proto.Command, body []byte) error
	SendItems(ctx context.Context, from, to int, cmd proto.Command, items []model.PathItem) error
	Recv(ctx context.Context, rank int) (Frame, error)
	Close(rank int)
}

// InProcessFabric realizes Fabric as one buffered channel per rank,
// modeling THREADS_ONLY (original_source/src/pfutils.c) where every rank
// is a goroutine in the same address space instead of a separate MPI
// process.
type InProcessFabric struct {
	mu     sync.Mutex
	chans  []chan Frame
	closed []bool
}

// NewInProcessFabric builds a fabric with n ranks, each with an inbox of
// the given buffer depth. A depth of 0 makes Send/Recv rendezvous, which
// is closer to MPI's synchronous send semantics; a positive depth avoids
// stalling a hot Manager dispatch loop on a slow Worker.
func NewInProcessFabric(n, depth int) *InProcessFabric {
	f := &InProcessFabric{
		chans:  make([]chan Frame, n),
		closed: make([]bool, n),
	}
	for i := range f.chans {
		f.chans[i] = make(chan Frame, depth)
	}
	return f
}

func (f *InProcessFabric) Send(ctx context.Context, from, to int, cmd proto.Command, body []byte) error {
	if to < 0 || to >= len(f.chans) {
		return errors.Errorf("fabric: no such rank %d", to)
	}
	select {
	case f.chans[to] <- Frame{From: from, To: to, Cmd: cmd, Body: body}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *InProcessFabric) SendItems(ctx context.Context, from, to int, cmd proto.Command, items []model.PathItem) error {
	if to < 0 || to >= len(f.chans) {
		return errors.Errorf("fabric: no such rank %d", to)
	}
	select {
	case f.chans[to] <- Frame{From: from, To: to, Cmd: cmd, Items: items}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *InProcessFabric) Recv(ctx context.Context, rank int) (Frame, error) {
	if rank < 0 || rank >= len(f.chans) {
		return Frame{}, errors.Errorf("fabric: no such rank %d", rank)
	}
	select {
	case frame, ok := <-f.chans[rank]:
		if !ok {
			return Frame{Cmd: proto.Exit}, nil
		}
		return frame, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Close marks a rank's inbox as drained. Safe to call more than once.
func (f *InProcessFabric) Close(rank int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rank < 0 || rank >= len(f.chans) || f.closed[rank] {
		return
	}
	f.closed[rank] = true
	close(f.chans[rank])
}

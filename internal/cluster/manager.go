package cluster

import (
	"context"

	"github.com/hpc-pftool/pftool/internal/model"
	"github.com/hpc-pftool/pftool/internal/proto"
	"github.com/hpc-pftool/pftool/internal/queue"
)

// Manager is the cluster's dispatcher: it owns one WorkBufList per category
// command (Input, Dir, Process, Tape) and a busy/idle flag per worker rank,
// replicating the source's manager loop (original_source/src/pfutils.c's
// MANAGER_PROC send/recv switch) that keeps handing queued work to the
// lowest-numbered free worker until every queue is empty and every worker
// is idle.
type Manager struct {
	numRanks int
	queues   map[proto.Command]*queue.WorkBufList
	busy     []bool // indexed by worker rank
	done     bool
}

// priority is the fixed category order the manager drains in: input paths
// first, then directories, then regular-file work, then tape restores last
// - input/dir discovery feeds the other queues, so draining them first
// keeps the pipeline full.
var priority = []proto.Command{proto.Input, proto.Dir, proto.Process, proto.Tape}

// NewManager builds a manager over ranks [FirstWorkerRank, numRanks).
func NewManager(numRanks int) *Manager {
	m := &Manager{
		numRanks: numRanks,
		queues:   make(map[proto.Command]*queue.WorkBufList),
		busy:     make([]bool, numRanks),
	}
	for _, c := range priority {
		m.queues[c] = &queue.WorkBufList{}
	}
	return m
}

// Enqueue adds a buffer of work under the given category.
func (m *Manager) Enqueue(cmd proto.Command, buf queue.WorkBuf) {
	q, ok := m.queues[cmd]
	if !ok {
		return
	}
	q.Enqueue(buf)
}

// Seed classifies the job's top-level PathItems the way the source's
// process_path does on the manager before any worker gets involved: a
// directory becomes Dir work (to be listed), anything else becomes Process
// work (to be copied/compared directly).
func (m *Manager) Seed(items []model.PathItem) {
	for _, item := range items {
		if item.Stat.IsDir() {
			m.Enqueue(proto.Dir, queue.WorkBuf{Items: []model.PathItem{item}})
		} else {
			m.Enqueue(proto.Process, queue.WorkBuf{Items: []model.PathItem{item}})
		}
	}
}

// nextFreeWorker does a linear low-to-high scan for an idle worker, the Go
// analogue of the source's "find the first idle proc" search over its
// proc_status array.
func (m *Manager) nextFreeWorker() (int, bool) {
	for r := FirstWorkerRank; r < m.numRanks; r++ {
		if !m.busy[r] {
			return r, true
		}
	}
	return 0, false
}

// nextWork pops the next buffer to dispatch, honoring the category
// priority order, and reports which command it came from.
func (m *Manager) nextWork() (proto.Command, queue.WorkBuf, bool) {
	for _, c := range priority {
		if buf, ok := m.queues[c].Dequeue(); ok {
			return c, buf, true
		}
	}
	return 0, queue.WorkBuf{}, false
}

// idle reports whether every queue is empty and every worker is free - the
// source's termination predicate for shutting the cluster down.
func (m *Manager) idle() bool {
	for _, c := range priority {
		if m.queues[c].Len() > 0 {
			return false
		}
	}
	for r := FirstWorkerRank; r < m.numRanks; r++ {
		if m.busy[r] {
			return false
		}
	}
	return true
}

// Run drives the dispatch loop: while work remains or a worker is busy,
// assign queued buffers to free workers and process completion frames;
// once idle, broadcast Exit to every other rank and return.
func (m *Manager) Run(ctx context.Context, fabric Fabric, onNonFatal func()) error {
	for {
		for {
			worker, ok := m.nextFreeWorker()
			if !ok {
				break
			}
			cmd, buf, ok := m.nextWork()
			if !ok {
				break
			}
			if err := fabric.SendItems(ctx, ManagerRank, worker, cmd, buf.Items); err != nil {
				return err
			}
			m.busy[worker] = true
		}

		if m.idle() {
			return m.broadcastExit(ctx, fabric)
		}

		frame, err := fabric.Recv(ctx, ManagerRank)
		if err != nil {
			return err
		}
		switch frame.Cmd {
		case proto.WorkDone:
			if frame.From >= 0 && frame.From < len(m.busy) {
				m.busy[frame.From] = false
			}
		case proto.NonFatalInc:
			if onNonFatal != nil {
				onNonFatal()
			}
		case proto.Input, proto.Dir, proto.Process, proto.Tape:
			m.Enqueue(frame.Cmd, queue.WorkBuf{Items: frame.Items})
		case proto.QueueSize:
			// request-response per spec.md §4.1: reply to the requester with
			// the input queue's current length, the source's
			// request_input_queuesize().
			n := int64(m.queues[proto.Input].Len())
			if err := fabric.Send(ctx, ManagerRank, frame.From, proto.QueueSize, encodeInt64(n)); err != nil {
				return err
			}
		}
	}
}

func (m *Manager) broadcastExit(ctx context.Context, fabric Fabric) error {
	for r := 0; r < m.numRanks; r++ {
		if r == ManagerRank {
			continue
		}
		if err := fabric.Send(ctx, ManagerRank, r, proto.Exit, nil); err != nil {
			return err
		}
	}
	return nil
}

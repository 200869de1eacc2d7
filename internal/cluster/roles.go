// Package cluster implements the rank topology the original MPI program
// expressed as process roles: a Manager, an Output rank, an Accumulator,
// and a pool of Workers, all wired together by a Fabric. In-process, each
// role is a goroutine and the Fabric is a set of Go channels rather than
// an MPI communicator, following THREADS_ONLY from the source
// (original_source/src/pfutils.c) rather than the MPI-ranks build.
package cluster

// Role identifies which job a rank performs. Rank 0 is always Manager;
// rank 1 is always Output; rank 2 is always Accumulator; everything from
// rank 3 up is a Worker, mirroring the fixed low-rank assignment in the
// source's main() before MPI_Comm_rank dispatch.
type Role int

const (
	RoleManager Role = iota
	RoleOutput
	RoleAccumulator
	RoleWorker
)

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "MANAGER"
	case RoleOutput:
		return "OUTPUT"
	case RoleAccumulator:
		return "ACCUMULATOR"
	case RoleWorker:
		return "WORKER"
	default:
		return "UNKNOWN"
	}
}

const (
	ManagerRank     = 0
	OutputRank      = 1
	AccumulatorRank = 2
	FirstWorkerRank = 3
)

// RoleForRank reproduces the source's fixed rank assignment.
func RoleForRank(rank int) Role {
	switch rank {
	case ManagerRank:
		return RoleManager
	case OutputRank:
		return RoleOutput
	case AccumulatorRank:
		return RoleAccumulator
	default:
		return RoleWorker
	}
}

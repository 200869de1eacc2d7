package cluster

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hpc-pftool/pftool/internal/proto"
)

// Severity mirrors the source's FATAL/NONFATAL distinction passed to
// errsend() (original_source/src/pfutils.c:1173).
type Severity int

const (
	NonFatal Severity = iota
	Fatal
)

// ErrSend reports err to the Output rank the way errsend() forwards a
// message to the output process: NonFatal errors are logged and counted
// (send_manager_nonfatal_inc in the source, here a proto.NonFatalInc frame
// to Manager, whose onNonFatal hook Job.Run wires to the job's
// NonFatalErrors counter) and
// the caller keeps going; Fatal errors are logged and then cancel the job
// via cancel, the Go analogue of the source's MPI_Abort(MPI_COMM_WORLD,-1).
func ErrSend(ctx context.Context, fabric Fabric, rank int, sev Severity, err error, cancel context.CancelFunc) error {
	if err == nil {
		return nil
	}
	prefix := "ERROR NONFATAL: "
	if sev == Fatal {
		prefix = "ERROR FATAL: "
	}
	msg := []byte(prefix + err.Error())
	if sendErr := fabric.Send(ctx, rank, OutputRank, proto.Log, msg); sendErr != nil {
		return errors.Wrap(sendErr, "errsend: failed to reach output rank")
	}
	if sev == NonFatal {
		if sendErr := fabric.Send(ctx, rank, ManagerRank, proto.NonFatalInc, nil); sendErr != nil {
			return errors.Wrap(sendErr, "errsend: failed to reach manager rank")
		}
		return nil
	}
	if cancel != nil {
		cancel()
	}
	return err
}

package proto

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Conn is the framing layer over a single rank-to-rank pipe. Every inter-rank
// send and receive in the source is a blocking MPI_Send/MPI_Recv pair; here
// that's a blocking write/read over an io.Reader/io.Writer pair.
// InProcessFabric does not use Conn: it passes cluster.Frame values over Go
// channels directly.
//
// Encoding mirrors the source's convention of sending an opcode followed by
// zero or more typed messages in a command-specific fixed order: the opcode
// byte, then a sequence of sections - fixed 8-byte little-endian values
// written by WriteInt / WriteDouble, and length-prefixed byte strings written
// by WriteBytes - read back in the same order the sender used. This is the Go analogue of desync's Protocol.WriteMessage /
// ReadMessage (protocol.go), generalized from one flat body to a sequence of
// typed sections so COPYSTATS's "int, double" and EXAMINEDSTATS's
// "int, double, int" payload shapes don't need ad hoc structs.
type Conn struct {
	r io.Reader
	w io.Writer
}

func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: r, w: w}
}

// WriteCommand sends just the opcode, used for commands with no payload
// (EXIT, WORKDONE, NONFATALINC, CHUNKBUSY) or as the header before payload
// sections follow.
func (c *Conn) WriteCommand(cmd Command) error {
	_, err := c.w.Write([]byte{byte(cmd)})
	return errors.Wrapf(err, "send command %s", cmd)
}

func (c *Conn) ReadCommand() (Command, error) {
	var b [1]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return 0, errors.Wrap(err, "read command")
	}
	return Command(b[0]), nil
}

func (c *Conn) WriteInt(v int) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(int64(v)))
	_, err := c.w.Write(b[:])
	return errors.Wrap(err, "send int")
}

func (c *Conn) ReadInt() (int, error) {
	var b [8]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return 0, errors.Wrap(err, "read int")
	}
	return int(int64(binary.LittleEndian.Uint64(b[:]))), nil
}

// WriteDouble carries byte counts that may exceed 2^31, mirroring the
// source's choice of MPI_DOUBLE for COPYSTATS/EXAMINEDSTATS byte fields.
func (c *Conn) WriteDouble(v float64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	_, err := c.w.Write(b[:])
	return errors.Wrap(err, "send double")
}

func (c *Conn) ReadDouble() (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return 0, errors.Wrap(err, "read double")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

// WriteBytes writes a length-prefixed byte string - used to carry a single
// MESSAGESIZE text line (OUT/LOG) or a packed PathItem buffer.
func (c *Conn) WriteBytes(b []byte) error {
	if err := c.WriteInt(len(b)); err != nil {
		return err
	}
	_, err := c.w.Write(b)
	return errors.Wrap(err, "send bytes")
}

func (c *Conn) ReadBytes() ([]byte, error) {
	n, err := c.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Errorf("negative byte length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(c.r, b); err != nil {
		return nil, errors.Wrap(err, "read bytes")
	}
	return b, nil
}

package proto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnCommandRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, &buf)

	require.NoError(t, c.WriteCommand(Copy))
	got, err := c.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, Copy, got)
}

func TestConnIntRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, &buf)

	require.NoError(t, c.WriteInt(-42))
	got, err := c.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, -42, got)
}

func TestConnDoubleRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, &buf)

	require.NoError(t, c.WriteDouble(3.14159))
	got, err := c.ReadDouble()
	require.NoError(t, err)
	assert.InDelta(t, 3.14159, got, 1e-9)
}

func TestConnBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, &buf)

	payload := []byte("hello pftool")
	require.NoError(t, c.WriteBytes(payload))
	got, err := c.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestConnBytesEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, &buf)

	require.NoError(t, c.WriteBytes(nil))
	got, err := c.ReadBytes()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConnFullMessageSequence(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, &buf)

	require.NoError(t, c.WriteCommand(CopyStats))
	require.NoError(t, c.WriteInt(7))
	require.NoError(t, c.WriteDouble(12345.6789))

	cmd, err := c.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, CopyStats, cmd)

	n, err := c.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	v, err := c.ReadDouble()
	require.NoError(t, err)
	assert.InDelta(t, 12345.6789, v, 1e-6)
}

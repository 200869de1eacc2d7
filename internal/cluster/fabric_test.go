package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-pftool/pftool/internal/model"
	"github.com/hpc-pftool/pftool/internal/proto"
)

func TestFabricSendRecv(t *testing.T) {
	f := NewInProcessFabric(2, 1)
	ctx := context.Background()

	require.NoError(t, f.Send(ctx, 0, 1, proto.Log, []byte("hi")))
	frame, err := f.Recv(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, frame.From)
	assert.Equal(t, proto.Log, frame.Cmd)
	assert.Equal(t, []byte("hi"), frame.Body)
}

func TestFabricSendItems(t *testing.T) {
	f := NewInProcessFabric(2, 1)
	ctx := context.Background()

	items := []model.PathItem{{Path: "/a"}, {Path: "/b"}}
	require.NoError(t, f.SendItems(ctx, 0, 1, proto.Process, items))
	frame, err := f.Recv(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, items, frame.Items)
}

func TestFabricSendUnknownRank(t *testing.T) {
	f := NewInProcessFabric(2, 1)
	err := f.Send(context.Background(), 0, 5, proto.Log, nil)
	assert.Error(t, err)
}

func TestFabricRecvAfterClose(t *testing.T) {
	f := NewInProcessFabric(2, 1)
	f.Close(1)
	f.Close(1) // safe to call twice

	frame, err := f.Recv(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, proto.Exit, frame.Cmd)
}

func TestFabricRecvContextCancelled(t *testing.T) {
	f := NewInProcessFabric(1, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Recv(ctx, 0)
	assert.Error(t, err)
}

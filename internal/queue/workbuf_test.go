package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-pftool/pftool/internal/model"
)

func TestPackListSplitsOnMessageBuffer(t *testing.T) {
	list := &PathList{}
	total := MessageBuffer + 10
	for i := 0; i < total; i++ {
		list.Enqueue(model.PathItem{Path: "f"})
	}

	bufs := PackList(list)
	require.Len(t, bufs, 2)
	assert.Len(t, bufs[0].Items, MessageBuffer)
	assert.Len(t, bufs[1].Items, 10)
	assert.Equal(t, 0, list.Len())
}

func TestPackListEmpty(t *testing.T) {
	list := &PathList{}
	bufs := PackList(list)
	require.Len(t, bufs, 1)
	assert.Nil(t, bufs[0].Items)
}

func TestWorkBufListFIFO(t *testing.T) {
	var l WorkBufList
	l.Enqueue(WorkBuf{Items: []model.PathItem{{Path: "a"}}})
	l.Enqueue(WorkBuf{Items: []model.PathItem{{Path: "b"}}})
	assert.Equal(t, 2, l.Len())

	first, ok := l.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", first.Items[0].Path)

	second, ok := l.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "b", second.Items[0].Path)

	_, ok = l.Dequeue()
	assert.False(t, ok)
}

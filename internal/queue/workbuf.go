package queue

import "github.com/hpc-pftool/pftool/internal/model"

// WorkBuf is the unit of transfer between ranks: up to MessageBuffer
// PathItems packed together. In the source this was a raw MPI_Pack()'d byte
// buffer; here the "packing" is just owning a bounded-length slice by value,
// since Go doesn't need a byte-exact wire representation to share a struct
// layout across ranks within one process. internal/proto has the int/double/
// byte-string framing a cross-process transport would build on; no WorkBuf
// or PathItem byte encoding exists in this module.
type WorkBuf struct {
	Items []model.PathItem
}

// WorkBufList is a FIFO of WorkBufs per category on the manager. Dequeue
// releases both the buffer and its wrapper - in Go that's simply dropping
// the reference, but the method still nils the slot to make a stale read
// after dequeue fail loudly rather than silently reusing freed state.
type WorkBufList struct {
	bufs []WorkBuf
}

// Len reports the number of buffers still queued.
func (l *WorkBufList) Len() int { return len(l.bufs) }

// Enqueue appends a WorkBuf to the tail of the list. Once enqueued, the
// WorkBufList owns it - callers must not reuse the Items slice afterward.
func (l *WorkBufList) Enqueue(buf WorkBuf) {
	l.bufs = append(l.bufs, buf)
}

// Dequeue removes and returns the buffer at the head of the list.
func (l *WorkBufList) Dequeue() (WorkBuf, bool) {
	if len(l.bufs) == 0 {
		return WorkBuf{}, false
	}
	buf := l.bufs[0]
	l.bufs[0] = WorkBuf{}
	l.bufs = l.bufs[1:]
	return buf, true
}

// PackList walks a PathList and emits one WorkBuf per MessageBuffer items,
// draining the source list as it goes. For N items it produces exactly
// ceil(N/MessageBuffer) buffers, and the sum of their item counts is N -
// including a final, possibly short, buffer for the remainder (the source's
// pack_list unconditionally enqueues the trailing partial buffer too, even
// when empty remainder; PackList only emits a trailing empty buffer when the
// list was empty to begin with, matching the practical use of "flush
// whatever's pending").
func PackList(list *PathList) []WorkBuf {
	items := list.Items()
	list.Clear()
	if len(items) == 0 {
		return []WorkBuf{{Items: nil}}
	}
	var out []WorkBuf
	for len(items) > 0 {
		n := MessageBuffer
		if n > len(items) {
			n = len(items)
		}
		chunk := make([]model.PathItem, n)
		copy(chunk, items[:n])
		out = append(out, WorkBuf{Items: chunk})
		items = items[n:]
	}
	return out
}

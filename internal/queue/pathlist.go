// Package queue implements the path-list and packed-buffer plumbing that
// batches PathItems into fixed-size transfer units between ranks: PathList
// (a per-rank FIFO), WorkBuf (a packed buffer of up to MessageBuffer items),
// and WorkBufList (a FIFO of WorkBufs on the manager). Grounded on the
// source's manual head+tail linked-list FIFOs (enqueue_path/dequeue_node,
// enqueue_buf_list/dequeue_buf_list), rendered as owned Go containers instead
// of manual malloc/free pairs.
package queue

import "github.com/hpc-pftool/pftool/internal/model"

// MessageBuffer is the maximum number of PathItems a single WorkBuf carries.
const MessageBuffer = 4096

type node struct {
	item model.PathItem
	next *node
}

// PathList is a singly linked FIFO of PathItems, held only inside a single
// rank - it never crosses the wire itself; PackList converts it into
// WorkBufs for that.
type PathList struct {
	head, tail *node
	count      int
}

// Len reports the number of items currently queued.
func (l *PathList) Len() int { return l.count }

// Enqueue appends an item to the tail of the list - O(1).
func (l *PathList) Enqueue(item model.PathItem) {
	n := &node{item: item}
	if l.head == nil {
		l.head = n
		l.tail = n
	} else {
		l.tail.next = n
		l.tail = n
	}
	l.count++
}

// Dequeue removes and returns the item at the head of the list - O(1).
func (l *PathList) Dequeue() (model.PathItem, bool) {
	if l.head == nil {
		return model.PathItem{}, false
	}
	n := l.head
	l.head = n.next
	if l.head == nil {
		l.tail = nil
	}
	l.count--
	return n.item, true
}

// Clear drops every queued item, resetting the list to empty.
func (l *PathList) Clear() {
	l.head, l.tail = nil, nil
	l.count = 0
}

// Items returns a snapshot slice of the queued items in FIFO order, without
// draining the list. Used by PackList.
func (l *PathList) Items() []model.PathItem {
	out := make([]model.PathItem, 0, l.count)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.item)
	}
	return out
}

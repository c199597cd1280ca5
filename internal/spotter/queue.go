package spotter

import (
	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

// messageQueue is a capacity-bounded FIFO of framed messages. Once full,
// every push evicts the oldest entry; the drop-oldest policy is a capacity
// contract, not an error.
type messageQueue struct {
	capacity int
	items    []*bcmp.Message
}

func newMessageQueue(capacity int) *messageQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &messageQueue{capacity: capacity}
}

// PushWithEviction appends to the tail, silently dropping the head when the
// queue is at capacity. It reports whether an entry was evicted.
func (q *messageQueue) PushWithEviction(msg *bcmp.Message) bool {
	evicted := false
	if len(q.items) >= q.capacity {
		copy(q.items, q.items[1:])
		q.items = q.items[:len(q.items)-1]
		evicted = true
	}
	q.items = append(q.items, msg)
	return evicted
}

// Pop removes and returns the head of the queue.
func (q *messageQueue) Pop() (*bcmp.Message, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	msg := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = nil
	q.items = q.items[:len(q.items)-1]
	return msg, true
}

// Peek returns up to n messages from the head without mutating the queue.
func (q *messageQueue) Peek(n int) []*bcmp.Message {
	if n > len(q.items) {
		n = len(q.items)
	}
	out := make([]*bcmp.Message, n)
	copy(out, q.items[:n])
	return out
}

// Len returns the number of queued messages.
func (q *messageQueue) Len() int {
	return len(q.items)
}

// Clear empties the queue and returns the number of messages removed.
func (q *messageQueue) Clear() int {
	count := len(q.items)
	q.items = nil
	return count
}

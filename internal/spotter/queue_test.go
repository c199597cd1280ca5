package spotter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bristlemouth/spotter-server/pkg/bcmp"
)

func queueMessage(t *testing.T, n int) *bcmp.Message {
	t.Helper()
	msg, err := bcmp.NewMessage(bcmp.TopicStatus, []byte(fmt.Sprintf("msg-%d", n)), bcmp.TypeSensorData)
	require.NoError(t, err)
	msg.Sequence = uint32(n)
	return msg
}

func TestQueueEviction(t *testing.T) {
	q := newMessageQueue(5)

	for i := 1; i <= 10; i++ {
		evicted := q.PushWithEviction(queueMessage(t, i))
		assert.Equal(t, i > 5, evicted, "push %d", i)
	}

	assert.Equal(t, 5, q.Len())

	// Oldest five were dropped; survivors pop oldest first.
	for i := 6; i <= 10; i++ {
		msg, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, uint32(i), msg.Sequence)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestQueuePeek(t *testing.T) {
	q := newMessageQueue(10)
	for i := 1; i <= 3; i++ {
		q.PushWithEviction(queueMessage(t, i))
	}

	peeked := q.Peek(2)
	require.Len(t, peeked, 2)
	assert.Equal(t, uint32(1), peeked[0].Sequence)
	assert.Equal(t, uint32(2), peeked[1].Sequence)

	// Peeking more than queued returns everything without mutating.
	assert.Len(t, q.Peek(100), 3)
	assert.Equal(t, 3, q.Len())
}

func TestQueueClear(t *testing.T) {
	q := newMessageQueue(10)
	for i := 1; i <= 4; i++ {
		q.PushWithEviction(queueMessage(t, i))
	}

	assert.Equal(t, 4, q.Clear())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Clear())
}

func TestQueueMinimumCapacity(t *testing.T) {
	q := newMessageQueue(0)

	q.PushWithEviction(queueMessage(t, 1))
	evicted := q.PushWithEviction(queueMessage(t, 2))
	assert.True(t, evicted)
	assert.Equal(t, 1, q.Len())

	msg, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(2), msg.Sequence)
}

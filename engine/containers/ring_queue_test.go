package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](4)
	assert.True(t, rq.IsEmpty())

	rq.Enqueue(1)
	rq.Enqueue(2)
	rq.Enqueue(3)

	v, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, rq.Len())
}

func TestRingQueueDropsOldestWhenFull(t *testing.T) {
	rq := NewRingQueue[int](3)
	for i := 1; i <= 5; i++ {
		rq.Enqueue(i)
	}
	assert.True(t, rq.IsFull())
	assert.Equal(t, []int{3, 4, 5}, rq.Items())
}

func TestRingQueueEmptyErrors(t *testing.T) {
	rq := NewRingQueue[string](2)
	_, err := rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = rq.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueueItemsWrapAround(t *testing.T) {
	rq := NewRingQueue[int](3)
	rq.Enqueue(1)
	rq.Enqueue(2)
	_, err := rq.Dequeue()
	require.NoError(t, err)
	rq.Enqueue(3)
	rq.Enqueue(4)
	assert.Equal(t, []int{2, 3, 4}, rq.Items())
}

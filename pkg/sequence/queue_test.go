package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueueOrder(t *testing.T) {
	pq := NewPriorityQueue[string](4)
	pq.Enqueue("c", 3)
	pq.Enqueue("a", 1)
	pq.Enqueue("b", 2)

	head, ok := pq.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", head)

	var got []string
	for !pq.IsEmpty() {
		v, _, _ := pq.Dequeue()
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	_, _, ok = pq.Dequeue()
	assert.False(t, ok)
}

func TestPriorityQueueTieBreak(t *testing.T) {
	pq := NewPriorityQueue[string](0)
	pq.EnqueueTie("late", 5, 1)
	pq.EnqueueTie("preferred", 5, 0)
	pq.EnqueueTie("cheap", 4, 9)

	v, p, _ := pq.Dequeue()
	assert.Equal(t, "cheap", v)
	assert.Equal(t, 4.0, p)
	v, _, _ = pq.Dequeue()
	assert.Equal(t, "preferred", v)
}

func TestPriorityQueueUpdate(t *testing.T) {
	pq := NewPriorityQueue[int](0)
	pq.Enqueue(1, 10)
	item := pq.Enqueue(2, 20)
	pq.Update(item, 2, 5)

	v, _, _ := pq.Dequeue()
	assert.Equal(t, 2, v)

	pq.Update(item, 2, 1) // already popped
	assert.Equal(t, 1, pq.Len())

	pq.Reset()
	assert.True(t, pq.IsEmpty())
}

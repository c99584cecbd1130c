package sequence

import "container/heap"

// PriorityItem is an entry of a PriorityQueue. Lower Priority pops first;
// among equal priorities the lower Tie pops first.
type PriorityItem[T any] struct {
	Value    T
	Priority float64
	Tie      int
	index    int
}

type priorityQueue[T any] struct {
	items []*PriorityItem[T]
}

func (pq *priorityQueue[T]) Len() int {
	return len(pq.items)
}

func (pq *priorityQueue[T]) Less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Tie < b.Tie
}

func (pq *priorityQueue[T]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].index = i
	pq.items[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	item := x.(*PriorityItem[T])
	item.index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	pq.items = old[0 : n-1]
	return item
}

// PriorityQueue is a binary min-heap. It has no decrease-key: callers push a
// fresh entry and discard stale ones when they pop.
type PriorityQueue[T any] struct {
	pq priorityQueue[T]
}

func NewPriorityQueue[T any](capacity int) *PriorityQueue[T] {
	pq := &PriorityQueue[T]{}
	if capacity > 0 {
		pq.pq.items = make([]*PriorityItem[T], 0, capacity)
	}
	heap.Init(&pq.pq)
	return pq
}

func (pq *PriorityQueue[T]) Enqueue(value T, priority float64) *PriorityItem[T] {
	return pq.EnqueueTie(value, priority, 0)
}

// EnqueueTie pushes value with an explicit tie-break rank.
func (pq *PriorityQueue[T]) EnqueueTie(value T, priority float64, tie int) *PriorityItem[T] {
	item := &PriorityItem[T]{
		Value:    value,
		Priority: priority,
		Tie:      tie,
	}
	heap.Push(&pq.pq, item)
	return item
}

func (pq *PriorityQueue[T]) Dequeue() (T, float64, bool) {
	if pq.pq.Len() == 0 {
		var zero T
		return zero, 0, false
	}
	item := heap.Pop(&pq.pq).(*PriorityItem[T])
	return item.Value, item.Priority, true
}

func (pq *PriorityQueue[T]) Peek() (T, bool) {
	if pq.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	return pq.pq.items[0].Value, true
}

// Update changes a queued item in place. It is a no-op for items already popped.
func (pq *PriorityQueue[T]) Update(item *PriorityItem[T], value T, priority float64) {
	if item.index < 0 {
		return
	}
	item.Value = value
	item.Priority = priority
	heap.Fix(&pq.pq, item.index)
}

func (pq *PriorityQueue[T]) Reset() {
	clear(pq.pq.items)
	pq.pq.items = pq.pq.items[:0]
}

func (pq *PriorityQueue[T]) Len() int {
	return pq.pq.Len()
}

func (pq *PriorityQueue[T]) IsEmpty() bool {
	return pq.pq.Len() == 0
}

package pipeline

import (
	"container/heap"
	"sort"
	"sync"
)

// workQueue is a priority-ordered buffer of queue items. Higher priority
// dequeues first; equal priorities dequeue in insertion order. Enqueue never
// blocks and Dequeue returns immediately with ok=false on an empty queue.
type workQueue struct {
	mu      sync.Mutex
	items   itemHeap
	seq     uint64
	maxSize int
}

func newWorkQueue() *workQueue {
	return &workQueue{}
}

func (q *workQueue) Enqueue(item *QueueItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	item.seq = q.seq
	heap.Push(&q.items, item)

	if len(q.items) > q.maxSize {
		q.maxSize = len(q.items)
	}
}

func (q *workQueue) Dequeue() (*QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	return heap.Pop(&q.items).(*QueueItem), true
}

func (q *workQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// MaxSizeSeen reports the largest queue depth observed since creation.
func (q *workQueue) MaxSizeSeen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxSize
}

// Clear drops all queued items and reports how many were dropped. In-flight
// items are not affected.
func (q *workQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cleared := len(q.items)
	q.items = nil
	return cleared
}

// Peek returns up to limit items in dequeue order without removing them.
func (q *workQueue) Peek(limit int) []*QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	preview := make([]*QueueItem, len(q.items))
	copy(preview, q.items)
	sort.Slice(preview, func(a, b int) bool {
		if preview[a].Priority != preview[b].Priority {
			return preview[a].Priority > preview[b].Priority
		}
		return preview[a].seq < preview[b].seq
	})

	if len(preview) > limit {
		preview = preview[:limit]
	}
	return preview
}

// itemHeap orders items by priority (descending), breaking ties by insertion
// sequence (ascending) so equal priorities stay FIFO.
type itemHeap []*QueueItem

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(a, b int) bool {
	if h[a].Priority != h[b].Priority {
		return h[a].Priority > h[b].Priority
	}
	return h[a].seq < h[b].seq
}

func (h itemHeap) Swap(a, b int) {
	h[a], h[b] = h[b], h[a]
	h[a].index = a
	h[b].index = b
}

func (h *itemHeap) Push(x any) {
	item := x.(*QueueItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

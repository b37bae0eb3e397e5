package scheduler

import "go.trai.ch/fcomp/internal/core/domain"

// readyItem is one dispatchable target in the ready queue.
type readyItem struct {
	name     domain.InternedString
	priority int
	seq      int
}

// readyQueue is a max-heap ordered by descending priority; equal priorities
// dispatch in insertion order.
type readyQueue []readyItem

func (q readyQueue) Len() int { return len(q) }

func (q readyQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) {
	*q = append(*q, x.(readyItem))
}

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

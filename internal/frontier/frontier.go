/*
Package frontier holds the crawl's pending work.

Responsibilities:
- Order queued URLs by (priority, depth, insertion order)
- Hand out the most promising URL on demand
- Track which canonical URLs have ever been discovered
*/
package frontier

import "container/heap"

// Frontier is a min-heap of queued URLs. Not safe for concurrent use; the
// scheduler owns it from a single goroutine.
type Frontier struct {
	items    itemHeap
	sequence uint64
}

func New() *Frontier {
	return &Frontier{}
}

// Push queues a URL. Sequence numbers are assigned internally so two pushes
// with equal priority and depth come back in insertion order.
func (f *Frontier) Push(priority int, depth int, url string) {
	f.sequence++
	heap.Push(&f.items, Item{
		Priority: priority,
		Depth:    depth,
		Sequence: f.sequence,
		URL:      url,
	})
}

// Pop removes and returns the best queued item. ok is false when the
// frontier is empty.
func (f *Frontier) Pop() (Item, bool) {
	if f.items.Len() == 0 {
		return Item{}, false
	}
	return heap.Pop(&f.items).(Item), true
}

func (f *Frontier) Len() int {
	return f.items.Len()
}

type itemHeap []Item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	if h[i].Depth != h[j].Depth {
		return h[i].Depth < h[j].Depth
	}
	return h[i].Sequence < h[j].Sequence
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(Item))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

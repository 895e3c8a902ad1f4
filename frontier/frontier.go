// Package frontier implements the priority worklist shared by every grid search.
//
// Frontier is a binary min-heap of SearchNode ordered by (Priority, insertion
// sequence): lower priority first, and among equal priorities the node pushed
// earlier pops first. That FIFO tie-break makes visitation traces reproducible
// and identical to a "stable sort, then take the head" worklist, at O(log n)
// per operation instead of O(n log n).
//
// Duplicates are allowed: pushing the same position twice yields two entries.
// Searches use the "lazy decrease-key" pattern and drop stale entries on pop.
package frontier

import (
	"container/heap"
	"errors"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// ErrEmpty is returned by PopMin and PeekMin on an empty frontier.
var ErrEmpty = errors.New("frontier: pop from empty frontier")

// SearchNode pairs a position with the priority it was enqueued under.
// The meaning of Priority is up to the algorithm (cost, estimate or both).
type SearchNode struct {
	Pos      gridgraph.Position
	Priority int
}

// Frontier is a min-heap of SearchNode with FIFO tie-breaking.
// The zero value is ready to use. Not safe for concurrent use.
type Frontier struct {
	items nodePQ
	seq   uint64 // next insertion sequence number
}

// New returns an empty frontier with room for capacity entries.
func New(capacity int) *Frontier {
	if capacity < 0 {
		capacity = 0
	}
	return &Frontier{items: make(nodePQ, 0, capacity)}
}

// Push inserts n. Complexity: O(log n).
func (f *Frontier) Push(n SearchNode) {
	heap.Push(&f.items, entry{node: n, seq: f.seq})
	f.seq++
}

// PopMin removes and returns the node with the lowest priority, breaking ties
// by insertion order. Returns ErrEmpty if the frontier is empty.
// Complexity: O(log n).
func (f *Frontier) PopMin() (SearchNode, error) {
	if f.items.Len() == 0 {
		return SearchNode{}, ErrEmpty
	}
	return heap.Pop(&f.items).(entry).node, nil
}

// PeekMin returns the node PopMin would return, without removing it.
// Complexity: O(1).
func (f *Frontier) PeekMin() (SearchNode, error) {
	if f.items.Len() == 0 {
		return SearchNode{}, ErrEmpty
	}
	return f.items[0].node, nil
}

// IsEmpty reports whether the frontier holds no entries.
func (f *Frontier) IsEmpty() bool { return f.items.Len() == 0 }

// Len returns the number of entries, stale duplicates included.
func (f *Frontier) Len() int { return f.items.Len() }

// Reset drops all entries and restarts the insertion sequence.
func (f *Frontier) Reset() {
	clear(f.items)
	f.items = f.items[:0]
	f.seq = 0
}

// entry is a heap slot: the node plus its insertion sequence.
type entry struct {
	node SearchNode
	seq  uint64
}

// nodePQ is a min-heap of entry ordered by (priority, seq).
type nodePQ []entry

// Len returns the number of items in the heap.
func (pq nodePQ) Len() int { return len(pq) }

// Less orders by priority, then by insertion sequence.
func (pq nodePQ) Less(i, j int) bool {
	if pq[i].node.Priority != pq[j].node.Priority {
		return pq[i].node.Priority < pq[j].node.Priority
	}
	return pq[i].seq < pq[j].seq
}

// Swap swaps two elements in the heap.
func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

// Push is called by heap.Push; x must be an entry.
func (pq *nodePQ) Push(x any) { *pq = append(*pq, x.(entry)) }

// Pop is called by heap.Pop and removes the last element.
func (pq *nodePQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}

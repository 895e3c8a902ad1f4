package gridgraph

import (
	"container/list"
	"slices"
)

// Breach returns the fewest obstacle cells whose removal connects from and
// to, listed in walking order from from. It is empty when the two cells are
// already connected. Obstacles at from or to themselves count as walls.
//
// Behavior:
//  1. 0–1 BFS from from: stepping onto an open cell costs 0, onto a wall 1.
//  2. Stop when to is dequeued.
//  3. Walk predecessors back and keep the walls.
//
// Ties between equally cheap breaches resolve by neighbour order
// (down, right, up, left), so the result is deterministic.
//
// Complexity: O(rows·cols). Memory: O(rows·cols).
func (b *Board) Breach(from, to Position) ([]Position, error) {
	if err := b.Validate(from); err != nil {
		return nil, err
	}
	if err := b.Validate(to); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.rows * b.cols
	const inf = int(^uint(0) >> 1)
	dist := make([]int, n)
	prev := make([]int, n)
	for i := range dist {
		dist[i] = inf
		prev[i] = -1
	}

	src, dst := b.index(from), b.index(to)
	dist[src] = b.wallCost(src)

	// cost-0 steps go to the front, cost-1 steps to the back
	dq := list.New()
	dq.PushFront(src)
	for dq.Len() > 0 {
		u := dq.Remove(dq.Front()).(int)
		if u == dst {
			break
		}
		for v := range b.Neighbors(b.Coordinate(u)) {
			vi := b.index(v)
			step := b.wallCost(vi)
			if nd := dist[u] + step; nd < dist[vi] {
				dist[vi] = nd
				prev[vi] = u
				if step == 0 {
					dq.PushFront(vi)
				} else {
					dq.PushBack(vi)
				}
			}
		}
	}

	walls := make([]Position, 0, dist[dst])
	for at := dst; at >= 0; at = prev[at] {
		if b.obstacles[at] {
			walls = append(walls, b.Coordinate(at))
		}
	}
	slices.Reverse(walls)

	return walls, nil
}

func (b *Board) wallCost(i int) int {
	if b.obstacles[i] {
		return 1
	}
	return 0
}

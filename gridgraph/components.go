package gridgraph

// ConnectedComponents finds all contiguous regions of open (non-obstacle) cells
// under 4-connectivity. Each component is a slice of row-major cell indices in
// BFS discovery order; components are ordered by their first cell in row-major order.
//
// To convert an index back to a Position, use Coordinate(idx).
//
// Time:   O(rows·cols·4).
// Memory: O(rows·cols) for seen flags and output.
func (b *Board) ConnectedComponents() [][]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := b.rows * b.cols
	seen := make([]bool, total)
	var comps [][]int

	for i0 := 0; i0 < total; i0++ {
		if b.obstacles[i0] || seen[i0] {
			continue
		}
		// BFS to collect component
		queue := []int{i0}
		seen[i0] = true
		for qi := 0; qi < len(queue); qi++ {
			u := b.Coordinate(queue[qi])
			for v := range b.Neighbors(u) {
				vi := b.index(v)
				if b.obstacles[vi] || seen[vi] {
					continue
				}
				seen[vi] = true
				queue = append(queue, vi)
			}
		}
		comps = append(comps, queue)
	}

	return comps
}

// Connected reports whether from and to are open cells in the same component.
// Out-of-range positions are never connected.
// Time: O(rows·cols) worst case.
func (b *Board) Connected(from, to Position) bool {
	if !b.InBounds(from) || !b.InBounds(to) {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	src, dst := b.index(from), b.index(to)
	if b.obstacles[src] || b.obstacles[dst] {
		return false
	}
	seen := make([]bool, b.rows*b.cols)
	seen[src] = true
	queue := []int{src}
	for qi := 0; qi < len(queue); qi++ {
		u := queue[qi]
		if u == dst {
			return true
		}
		for v := range b.Neighbors(b.Coordinate(u)) {
			vi := b.index(v)
			if !b.obstacles[vi] && !seen[vi] {
				seen[vi] = true
				queue = append(queue, vi)
			}
		}
	}

	return false
}

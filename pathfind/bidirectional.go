package pathfind

import (
	"context"
	"slices"

	"github.com/katalvlaran/gridpath/frontier"
	"github.com/katalvlaran/gridpath/gridgraph"
)

// bidiRunner runs two uniform-cost searches, one rooted at start and one at
// end, expanding them strictly alternately (forward first).
//
// best is the length of the shortest start→end path seen so far through an
// edge (meetF, meetB) scanned by either side. The search stops once
// minF + minB ≥ best, at which point best is optimal.
type bidiRunner struct {
	runner
	fwd, bwd *searchState
	emitted  []bool // cells already reported as visited by either side
	best     int
	meetF    int // forward-side endpoint of the meeting edge
	meetB    int // backward-side endpoint of the meeting edge
}

func (b *bidiRunner) run(ctx context.Context) *Result {
	if b.start == b.end {
		return b.trivial(ctx)
	}

	n := b.rows * b.cols
	b.fwd, b.bwd = newSearchState(n), newSearchState(n)
	b.emitted = make([]bool, n)
	b.best, b.meetF, b.meetB = inf, -1, -1

	si, ei := b.index(b.start), b.index(b.end)
	b.fwd.dist[si] = 0
	b.fwd.pq.Push(frontier.SearchNode{Pos: b.start})
	b.bwd.dist[ei] = 0
	b.bwd.pq.Push(frontier.SearchNode{Pos: b.end})

	forward := true
	for !b.fwd.pq.IsEmpty() && !b.bwd.pq.IsEmpty() {
		if ctx.Err() != nil {
			return b.cancelled()
		}
		if b.best < inf && b.bound() >= b.best {
			break
		}

		side, other := b.fwd, b.bwd
		if !forward {
			side, other = b.bwd, b.fwd
		}
		isForward := forward
		forward = !forward

		item, _ := side.pq.PopMin()
		u := item.Pos
		ui := b.index(u)
		if side.visited[ui] {
			continue
		}
		side.visited[ui] = true

		if !b.emitted[ui] {
			b.emitted[ui] = true
			b.emitVisit(u, side.dist[ui])
			if err := b.pace(ctx, b.cfg.VisitDelay); err != nil {
				return b.cancelled()
			}
		}

		b.scan(side, other, u, isForward)
	}

	if b.best == inf {
		b.res.Outcome = OutcomeExhausted
		return b.res
	}
	return b.emitPath(ctx, b.joinBackward())
}

// bound is the sum of both frontier minima. Stale heap heads only make it
// smaller, which keeps the stopping test conservative.
func (b *bidiRunner) bound() int {
	f, errF := b.fwd.pq.PeekMin()
	r, errB := b.bwd.pq.PeekMin()
	if errF != nil || errB != nil {
		return inf
	}
	return f.Priority + r.Priority
}

// scan relaxes u's neighbours on side and updates best whenever a neighbour
// already has a finite distance on the other side.
func (b *bidiRunner) scan(side, other *searchState, u gridgraph.Position, isForward bool) {
	ui := b.index(u)
	nd := side.dist[ui] + 1
	for v := range b.grid.Neighbors(u) {
		if b.grid.IsObstacle(v) {
			continue
		}
		vi := b.index(v)
		if other.dist[vi] != inf {
			if cand := nd + other.dist[vi]; cand < b.best {
				b.best = cand
				if isForward {
					b.meetF, b.meetB = ui, vi
				} else {
					b.meetF, b.meetB = vi, ui
				}
			}
		}
		if side.visited[vi] || nd >= side.dist[vi] {
			continue
		}
		side.dist[vi] = nd
		side.prev[vi] = ui
		side.pq.Push(frontier.SearchNode{Pos: v, Priority: nd})
	}
}

// joinBackward returns the meeting path ordered end → start.
func (b *bidiRunner) joinBackward() []gridgraph.Position {
	toStart := b.chain(b.fwd, b.meetF) // meetF … start
	toEnd := b.chain(b.bwd, b.meetB)   // meetB … end
	slices.Reverse(toEnd)              // end … meetB
	return append(toEnd, toStart...)
}

// trivial handles start == end: one visit, a one-cell path.
func (b *bidiRunner) trivial(ctx context.Context) *Result {
	if ctx.Err() != nil {
		return b.cancelled()
	}
	b.emitVisit(b.start, 0)
	if err := b.pace(ctx, b.cfg.VisitDelay); err != nil {
		return b.cancelled()
	}
	return b.emitPath(ctx, []gridgraph.Position{b.start})
}

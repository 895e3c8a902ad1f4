package pathfind

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/katalvlaran/gridpath/frontier"
	"github.com/katalvlaran/gridpath/gridgraph"
)

// inf marks an undiscovered cell in the distance table.
const inf = math.MaxInt

// Search runs alg on g from g.Start() to g.End(), streaming cell events to the
// configured Sink and pacing them with the configured delays.
//
// Returns:
//
//   - (*Result, nil) on every terminal outcome: found, exhausted or cancelled.
//     Cancellation is not an error; once ctx is done no further event is emitted.
//   - (nil, err) only when the run cannot start:
//     ErrNilGrid, ErrUnknownAlgorithm, ErrMissingEndpoints, ErrInvalidPosition.
//
// The grid must not change while the search runs; the session layer
// guarantees this by refusing edits while a run is active.
//
// Complexity:
//
//   - Time:  O(R·C·log(R·C)) heap work plus the configured delays.
//   - Space: O(R·C).
func Search(ctx context.Context, g Grid, alg Algorithm, opts ...Option) (*Result, error) {
	// 1) Build options.
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	// 2) Validate inputs.
	if g == nil {
		return nil, ErrNilGrid
	}
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(alg))
	}
	start, okStart := g.Start()
	end, okEnd := g.End()
	if !okStart || !okEnd {
		return nil, ErrMissingEndpoints
	}
	rows, cols := g.Dimensions()
	for _, p := range [2]gridgraph.Position{start, end} {
		if p.Row < 0 || p.Row >= rows || p.Col < 0 || p.Col >= cols {
			return nil, fmt.Errorf("%w: %s outside %dx%d", ErrInvalidPosition, p, rows, cols)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	log := cfg.Logger.With(slog.String("algorithm", alg.String()))
	log.Debug("search started",
		slog.String("start", start.String()),
		slog.String("end", end.String()))
	began := time.Now()

	// 3) Run the selected variant.
	base := runner{
		grid:  g,
		cfg:   cfg,
		rows:  rows,
		cols:  cols,
		start: start,
		end:   end,
		res: &Result{
			Algorithm: alg,
			Depth:     make(map[gridgraph.Position]int),
			Cost:      -1,
		},
	}
	var res *Result
	if alg == Bidirectional {
		b := &bidiRunner{runner: base}
		res = b.run(ctx)
	} else {
		base.priority = priorityFunc(alg, end)
		res = base.run(ctx)
	}

	log.Debug("search finished",
		slog.String("outcome", res.Outcome.String()),
		slog.Int("visited", len(res.Visited)),
		slog.Int("cost", res.Cost),
		slog.Duration("elapsed", time.Since(began)))

	return res, nil
}

// priorityFunc returns the frontier key for a cell discovered at distance g.
// BidirectionalAStar deliberately shares AStar's key.
func priorityFunc(alg Algorithm, end gridgraph.Position) func(p gridgraph.Position, g int) int {
	switch alg {
	case GreedyBestFirst:
		return func(p gridgraph.Position, _ int) int { return gridgraph.Manhattan(p, end) }
	case AStar, BidirectionalAStar:
		return func(p gridgraph.Position, g int) int { return g + gridgraph.Manhattan(p, end) }
	default:
		return func(_ gridgraph.Position, g int) int { return g }
	}
}

// searchState is one direction's bookkeeping, indexed row-major.
type searchState struct {
	dist    []int  // best known distance, inf if undiscovered
	visited []bool // expanded cells
	prev    []int  // predecessor index, -1 for the root or undiscovered
	pq      *frontier.Frontier
}

func newSearchState(n int) *searchState {
	s := &searchState{
		dist:    make([]int, n),
		visited: make([]bool, n),
		prev:    make([]int, n),
		pq:      frontier.New(n),
	}
	for i := range s.dist {
		s.dist[i] = inf
		s.prev[i] = -1
	}
	return s
}

// runner holds the mutable state for a single-direction search.
type runner struct {
	grid       Grid
	cfg        Options
	rows, cols int
	start, end gridgraph.Position
	priority   func(p gridgraph.Position, g int) int
	state      *searchState
	res        *Result
}

func (r *runner) index(p gridgraph.Position) int { return p.Row*r.cols + p.Col }

func (r *runner) coord(i int) gridgraph.Position { return gridgraph.Pos(i/r.cols, i%r.cols) }

// init seeds the frontier with the start cell at distance 0.
func (r *runner) init() {
	r.state = newSearchState(r.rows * r.cols)
	si := r.index(r.start)
	r.state.dist[si] = 0
	r.state.pq.Push(frontier.SearchNode{Pos: r.start, Priority: r.priority(r.start, 0)})
}

func (r *runner) run(ctx context.Context) *Result {
	r.init()
	return r.process(ctx)
}

// process pops cells until the end is reached, the frontier empties or ctx is done.
//
// Per iteration:
//  1. stop if ctx is done;
//  2. pop the lowest key, skip it if already expanded;
//  3. mark it visited, emit current+visited, pace;
//  4. if it is the end, emit the path;
//  5. otherwise relax its open, unexpanded neighbours.
func (r *runner) process(ctx context.Context) *Result {
	s := r.state
	for !s.pq.IsEmpty() {
		if ctx.Err() != nil {
			return r.cancelled()
		}
		item, _ := s.pq.PopMin()
		u := item.Pos
		ui := r.index(u)
		if s.visited[ui] {
			continue
		}
		s.visited[ui] = true
		r.emitVisit(u, s.dist[ui])
		if err := r.pace(ctx, r.cfg.VisitDelay); err != nil {
			return r.cancelled()
		}

		if u == r.end {
			return r.emitPath(ctx, r.chain(s, ui))
		}
		r.relax(s, u)
	}

	r.res.Outcome = OutcomeExhausted
	return r.res
}

// relax offers u's neighbours a distance of dist[u]+1; only strict
// improvements are recorded and pushed.
func (r *runner) relax(s *searchState, u gridgraph.Position) {
	nd := s.dist[r.index(u)] + 1
	for v := range r.grid.Neighbors(u) {
		if r.grid.IsObstacle(v) {
			continue
		}
		vi := r.index(v)
		if s.visited[vi] || nd >= s.dist[vi] {
			continue
		}
		s.dist[vi] = nd
		s.prev[vi] = r.index(u)
		s.pq.Push(frontier.SearchNode{Pos: v, Priority: r.priority(v, nd)})
	}
}

// chain follows prev links from idx back to the root, returning positions
// in that order (idx first).
func (r *runner) chain(s *searchState, idx int) []gridgraph.Position {
	var out []gridgraph.Position
	for at := idx; at != -1; at = s.prev[at] {
		out = append(out, r.coord(at))
	}
	return out
}

func (r *runner) emitVisit(p gridgraph.Position, depth int) {
	r.res.Visited = append(r.res.Visited, p)
	r.res.Depth[p] = depth
	r.cfg.Sink.OnCurrent(p)
	r.cfg.Sink.OnVisited(p)
}

// emitPath streams back (ordered end → start) to the sink, checking ctx
// before every step, then records it start → end on the result.
func (r *runner) emitPath(ctx context.Context, back []gridgraph.Position) *Result {
	for i, p := range back {
		if ctx.Err() != nil {
			return r.cancelled()
		}
		r.cfg.Sink.OnPath(p)
		if i == len(back)-1 {
			break
		}
		if err := r.pace(ctx, r.cfg.PathDelay); err != nil {
			return r.cancelled()
		}
	}

	path := make([]gridgraph.Position, len(back))
	for i, p := range back {
		path[len(back)-1-i] = p
	}
	r.res.Path = path
	r.res.Cost = len(path) - 1
	r.res.Outcome = OutcomeFound
	return r.res
}

func (r *runner) cancelled() *Result {
	r.res.Outcome = OutcomeCancelled
	r.res.Path = nil
	r.res.Cost = -1
	return r.res
}

// pace sleeps for d unless delays are skipped. It returns ctx.Err() as soon
// as ctx is done, even mid-sleep.
func (r *runner) pace(ctx context.Context, d time.Duration) error {
	if r.cfg.SkipDelay || d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package pathfind_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
)

// ------------------------------------------------------------------------
// helpers
// ------------------------------------------------------------------------

type eventKind int

const (
	evCurrent eventKind = iota
	evVisited
	evPath
)

type event struct {
	kind eventKind
	pos  gridgraph.Position
}

// recorder captures events and optionally fires a hook after each one.
type recorder struct {
	mu     sync.Mutex
	events []event
	hook   func(event)
}

func (r *recorder) add(k eventKind, p gridgraph.Position) {
	r.mu.Lock()
	e := event{kind: k, pos: p}
	r.events = append(r.events, e)
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(e)
	}
}

func (r *recorder) OnVisited(p gridgraph.Position) { r.add(evVisited, p) }
func (r *recorder) OnCurrent(p gridgraph.Position) { r.add(evCurrent, p) }
func (r *recorder) OnPath(p gridgraph.Position)    { r.add(evPath, p) }

func (r *recorder) of(k eventKind) []gridgraph.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []gridgraph.Position
	for _, e := range r.events {
		if e.kind == k {
			out = append(out, e.pos)
		}
	}
	return out
}

func mustParse(t testing.TB, lines ...string) *gridgraph.Board {
	t.Helper()
	b, err := gridgraph.ParseBoard(lines)
	require.NoError(t, err)
	return b
}

func search(t testing.TB, b *gridgraph.Board, alg pathfind.Algorithm, sink pathfind.Sink) *pathfind.Result {
	t.Helper()
	res, err := pathfind.Search(context.Background(), b, alg,
		pathfind.WithSink(sink), pathfind.WithSkipDelay())
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// bfsDistance is the reference shortest start→end distance, -1 if unreachable.
func bfsDistance(b *gridgraph.Board) int {
	start, _ := b.Start()
	end, _ := b.End()
	dist := map[gridgraph.Position]int{start: 0}
	queue := []gridgraph.Position{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == end {
			return dist[u]
		}
		for v := range b.Neighbors(u) {
			if _, seen := dist[v]; seen || b.IsObstacle(v) {
				continue
			}
			dist[v] = dist[u] + 1
			queue = append(queue, v)
		}
	}
	return -1
}

func randomBoard(rng *rand.Rand, rows, cols int, density float64) *gridgraph.Board {
	b, _ := gridgraph.NewBoard(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if rng.Float64() < density {
				_ = b.SetObstacle(gridgraph.Pos(r, c), true)
			}
		}
	}
	start := gridgraph.Pos(rng.Intn(rows), rng.Intn(cols))
	end := gridgraph.Pos(rng.Intn(rows), rng.Intn(cols))
	_ = b.SetObstacle(start, false)
	_ = b.SetObstacle(end, false)
	_ = b.SetStart(start)
	_ = b.SetEnd(end)
	return b
}

func assertValidPath(t *testing.T, b *gridgraph.Board, path []gridgraph.Position) {
	t.Helper()
	require.NotEmpty(t, path)
	start, _ := b.Start()
	end, _ := b.End()
	assert.Equal(t, start, path[0], "path must begin at start")
	assert.Equal(t, end, path[len(path)-1], "path must finish at end")
	seen := make(map[gridgraph.Position]bool, len(path))
	for i, p := range path {
		assert.False(t, b.IsObstacle(p), "path crosses obstacle at %s", p)
		assert.False(t, seen[p], "path repeats %s", p)
		seen[p] = true
		if i > 0 {
			assert.Equal(t, 1, gridgraph.Manhattan(path[i-1], p), "gap between %s and %s", path[i-1], p)
		}
	}
}

func reversed(in []gridgraph.Position) []gridgraph.Position {
	out := make([]gridgraph.Position, len(in))
	for i, p := range in {
		out[len(in)-1-i] = p
	}
	return out
}

// ------------------------------------------------------------------------
// 1. Validation
// ------------------------------------------------------------------------

func TestSearch_Validation(t *testing.T) {
	noEnd := mustParse(t, "S..", "...")
	noStart := mustParse(t, "..E", "...")
	ok := mustParse(t, "S.E")

	cases := []struct {
		name string
		grid pathfind.Grid
		alg  pathfind.Algorithm
		want error
	}{
		{"nil grid", nil, pathfind.AStar, pathfind.ErrNilGrid},
		{"missing end", noEnd, pathfind.Dijkstra, pathfind.ErrMissingEndpoints},
		{"missing start", noStart, pathfind.Dijkstra, pathfind.ErrMissingEndpoints},
		{"unknown algorithm", ok, pathfind.Algorithm(42), pathfind.ErrUnknownAlgorithm},
		{"negative algorithm", ok, pathfind.Algorithm(-1), pathfind.ErrUnknownAlgorithm},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			res, err := pathfind.Search(context.Background(), tc.grid, tc.alg, pathfind.WithSink(rec))
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, res)
			assert.Empty(t, rec.events, "no events before a run starts")
		})
	}
}

func TestOptions_NegativeDelayPanics(t *testing.T) {
	assert.Panics(t, func() { pathfind.WithVisitDelay(-time.Millisecond) })
	assert.Panics(t, func() { pathfind.WithPathDelay(-time.Millisecond) })
	assert.NotPanics(t, func() { pathfind.WithVisitDelay(0) })
}

func TestDefaultOptions(t *testing.T) {
	o := pathfind.DefaultOptions()
	assert.Equal(t, 20*time.Millisecond, o.VisitDelay)
	assert.Equal(t, 50*time.Millisecond, o.PathDelay)
	assert.False(t, o.SkipDelay)
	assert.NotNil(t, o.Sink)
	assert.NotNil(t, o.Logger)
}

// ------------------------------------------------------------------------
// 2. Algorithm names
// ------------------------------------------------------------------------

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]pathfind.Algorithm{
		"dijkstra":           pathfind.Dijkstra,
		"UCS":                pathfind.Dijkstra,
		"greedyBestFirst":    pathfind.GreedyBestFirst,
		"greedy":             pathfind.GreedyBestFirst,
		"aStar":              pathfind.AStar,
		"A*":                 pathfind.AStar,
		" astar ":            pathfind.AStar,
		"bidirectionalAStar": pathfind.BidirectionalAStar,
		"bidirectional":      pathfind.Bidirectional,
	}
	for in, want := range cases {
		got, err := pathfind.ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := pathfind.ParseAlgorithm("bogus")
	require.ErrorIs(t, err, pathfind.ErrUnknownAlgorithm)
}

func TestAlgorithm_TextRoundTrip(t *testing.T) {
	for _, a := range pathfind.Algorithms() {
		text, err := a.MarshalText()
		require.NoError(t, err)
		var back pathfind.Algorithm
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, a, back)
	}
	_, err := pathfind.Algorithm(99).MarshalText()
	require.ErrorIs(t, err, pathfind.ErrUnknownAlgorithm)
	assert.Equal(t, "Algorithm(99)", pathfind.Algorithm(99).String())
}

// ------------------------------------------------------------------------
// 3. Deterministic traces
// ------------------------------------------------------------------------

func TestSearch_DijkstraTrace(t *testing.T) {
	b := mustParse(t,
		"S..",
		"...",
		"..E",
	)
	rec := &recorder{}
	res := search(t, b, pathfind.Dijkstra, rec)

	wantVisited := []gridgraph.Position{
		{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: 1}, {Row: 2, Col: 0}, {Row: 1, Col: 1}, {Row: 0, Col: 2}, {Row: 2, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 2},
	}
	wantPath := []gridgraph.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}

	assert.Equal(t, pathfind.OutcomeFound, res.Outcome)
	assert.Equal(t, wantVisited, res.Visited)
	assert.Equal(t, wantVisited, rec.of(evVisited))
	assert.Equal(t, wantPath, res.Path)
	assert.Equal(t, reversed(wantPath), rec.of(evPath), "path is emitted end → start")
	assert.Equal(t, 4, res.Cost)
}

func TestSearch_WalledCentre(t *testing.T) {
	b := mustParse(t,
		"S..",
		".#.",
		"..E",
	)
	wall := gridgraph.Pos(1, 1)

	cases := []struct {
		alg         pathfind.Algorithm
		wantVisited []gridgraph.Position // nil: only checked for the wall
	}{
		{pathfind.Dijkstra, []gridgraph.Position{
			{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: 1}, {Row: 2, Col: 0}, {Row: 0, Col: 2}, {Row: 2, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 2},
		}},
		{pathfind.GreedyBestFirst, nil},
		{pathfind.AStar, nil},
		{pathfind.BidirectionalAStar, nil},
		{pathfind.Bidirectional, nil},
	}
	require.Len(t, cases, len(pathfind.Algorithms()))

	for _, tc := range cases {
		t.Run(tc.alg.String(), func(t *testing.T) {
			rec := &recorder{}
			res := search(t, b, tc.alg, rec)

			require.Equal(t, pathfind.OutcomeFound, res.Outcome)
			assertValidPath(t, b, res.Path)
			assert.Len(t, res.Path, 5)
			assert.Equal(t, 4, res.Cost)
			assert.NotContains(t, res.Visited, wall)
			assert.Equal(t, reversed(res.Path), rec.of(evPath))
			if tc.wantVisited != nil {
				assert.Equal(t, tc.wantVisited, res.Visited)
				assert.Equal(t, []gridgraph.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}, res.Path)
			}
		})
	}
}

func TestSearch_GreedyTrace(t *testing.T) {
	b := mustParse(t,
		"S..",
		"...",
		"..E",
	)
	res := search(t, b, pathfind.GreedyBestFirst, nil)

	assert.Equal(t, []gridgraph.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}, res.Visited)
	assert.Equal(t, []gridgraph.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}, res.Path)
}

func TestSearch_BidirectionalTrace(t *testing.T) {
	b := mustParse(t, "S...E")
	rec := &recorder{}
	res := search(t, b, pathfind.Bidirectional, rec)

	assert.Equal(t, pathfind.OutcomeFound, res.Outcome)
	assert.Equal(t, []gridgraph.Position{{Row: 0, Col: 0}, {Row: 0, Col: 4}, {Row: 0, Col: 1}, {Row: 0, Col: 3}}, res.Visited)
	assert.Equal(t, []gridgraph.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 0, Col: 4}}, res.Path)
	assert.Equal(t, reversed(res.Path), rec.of(evPath))
	assert.Equal(t, 4, res.Cost)
	assert.Equal(t, 0, res.Depth[gridgraph.Pos(0, 4)], "backward side measures from end")
}

func TestSearch_BidirectionalAStarMatchesAStar(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		b := randomBoard(rng, 12, 18, 0.25)
		a := search(t, b, pathfind.AStar, nil)
		ba := search(t, b, pathfind.BidirectionalAStar, nil)
		assert.Equal(t, a.Visited, ba.Visited)
		assert.Equal(t, a.Path, ba.Path)
		assert.Equal(t, a.Outcome, ba.Outcome)
	}
}

// ------------------------------------------------------------------------
// 4. Event protocol
// ------------------------------------------------------------------------

func TestSearch_EventOrdering(t *testing.T) {
	b := mustParse(t,
		"S.#.",
		"..#.",
		"...E",
	)
	for _, alg := range pathfind.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			rec := &recorder{}
			res := search(t, b, alg, rec)
			require.True(t, res.Found())

			// current/visited come in pairs, all before the first path event.
			var i int
			for i < len(rec.events) && rec.events[i].kind != evPath {
				require.Less(t, i+1, len(rec.events))
				assert.Equal(t, evCurrent, rec.events[i].kind)
				assert.Equal(t, evVisited, rec.events[i+1].kind)
				assert.Equal(t, rec.events[i].pos, rec.events[i+1].pos)
				i += 2
			}
			for ; i < len(rec.events); i++ {
				assert.Equal(t, evPath, rec.events[i].kind, "nothing but path events after the path begins")
			}
		})
	}
}

func TestSearch_StartEqualsEnd(t *testing.T) {
	b, err := gridgraph.NewBoard(3, 3)
	require.NoError(t, err)
	require.NoError(t, b.SetStart(gridgraph.Pos(1, 1)))
	require.NoError(t, b.SetEnd(gridgraph.Pos(1, 1)))

	for _, alg := range pathfind.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			rec := &recorder{}
			res := search(t, b, alg, rec)
			one := []gridgraph.Position{{Row: 1, Col: 1}}
			assert.Equal(t, one, res.Visited)
			assert.Equal(t, one, res.Path)
			assert.Equal(t, one, rec.of(evPath))
			assert.Equal(t, 0, res.Cost)
		})
	}
}

func TestSearch_Unreachable(t *testing.T) {
	b := mustParse(t,
		"S.#..",
		"..#..",
		"###.E",
	)
	start, _ := b.Start()
	var component map[int]bool
	for _, comp := range b.ConnectedComponents() {
		for _, idx := range comp {
			if idx == b.Index(start) {
				component = make(map[int]bool)
				for _, j := range comp {
					component[j] = true
				}
			}
		}
	}
	require.NotNil(t, component)
	require.False(t, b.Connected(start, gridgraph.Pos(2, 4)))

	for _, alg := range pathfind.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			rec := &recorder{}
			res := search(t, b, alg, rec)
			assert.Equal(t, pathfind.OutcomeExhausted, res.Outcome)
			assert.Nil(t, res.Path)
			assert.Equal(t, -1, res.Cost)
			assert.Empty(t, rec.of(evPath))
			if alg == pathfind.Bidirectional {
				return // the smaller side empties first
			}
			assert.Len(t, res.Visited, len(component), "exhausts exactly the start component")
			for _, p := range res.Visited {
				assert.True(t, component[b.Index(p)], "%s outside start component", p)
			}
		})
	}
}

// ------------------------------------------------------------------------
// 5. Randomised properties
// ------------------------------------------------------------------------

func TestSearch_RandomBoards(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 60; i++ {
		b := randomBoard(rng, 3+rng.Intn(14), 3+rng.Intn(20), 0.3)
		want := bfsDistance(b)

		for _, alg := range pathfind.Algorithms() {
			rec := &recorder{}
			res := search(t, b, alg, rec)

			// visited cells are unique, open and never revisited
			seen := make(map[gridgraph.Position]bool)
			for _, p := range res.Visited {
				require.False(t, seen[p], "board %d %s revisited %s", i, alg, p)
				require.False(t, b.IsObstacle(p))
				seen[p] = true
			}
			require.Equal(t, res.Visited, rec.of(evVisited))

			if want < 0 {
				require.Equal(t, pathfind.OutcomeExhausted, res.Outcome, "board %d %s", i, alg)
				continue
			}
			require.Equal(t, pathfind.OutcomeFound, res.Outcome, "board %d %s", i, alg)
			assertValidPath(t, b, res.Path)
			if alg == pathfind.GreedyBestFirst {
				assert.GreaterOrEqual(t, res.Cost, want)
			} else {
				assert.Equal(t, want, res.Cost, "board %d %s not optimal", i, alg)
			}
		}
	}
}

func TestSearch_Repeatable(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	boards := []*gridgraph.Board{
		mustParse(t, "S..", ".#.", "..E"),
		randomBoard(rng, 9, 13, 0.25),
		randomBoard(rng, 14, 7, 0.35),
	}
	for _, alg := range pathfind.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			for i, b := range boards {
				first, second := &recorder{}, &recorder{}
				a := search(t, b, alg, first)
				z := search(t, b, alg, second)

				assert.Equal(t, first.events, second.events, "board %d: event stream differs", i)
				assert.Equal(t, a.Outcome, z.Outcome, "board %d", i)
				assert.Equal(t, a.Visited, z.Visited, "board %d", i)
				assert.Equal(t, a.Path, z.Path, "board %d", i)
				assert.Equal(t, a.Cost, z.Cost, "board %d", i)
			}
		})
	}
}

func TestSearch_DijkstraDepthMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		b := randomBoard(rng, 15, 15, 0.2)
		res := search(t, b, pathfind.Dijkstra, nil)
		prev := 0
		for _, p := range res.Visited {
			d := res.Depth[p]
			require.GreaterOrEqual(t, d, prev, "Dijkstra expands in distance order")
			prev = d
		}
	}
}

// ------------------------------------------------------------------------
// 6. Cancellation
// ------------------------------------------------------------------------

func TestSearch_CancelFromSink(t *testing.T) {
	b, err := gridgraph.NewBoard(10, 10)
	require.NoError(t, err)
	require.NoError(t, b.SetStart(gridgraph.Pos(0, 0)))
	require.NoError(t, b.SetEnd(gridgraph.Pos(9, 9)))

	for _, alg := range pathfind.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			rec := &recorder{}
			visits := 0
			rec.hook = func(e event) {
				if e.kind == evVisited {
					visits++
					if visits == 3 {
						cancel()
					}
				}
			}
			res, err := pathfind.Search(ctx, b, alg, pathfind.WithSink(rec), pathfind.WithSkipDelay())
			require.NoError(t, err, "cancellation is not an error")
			assert.Equal(t, pathfind.OutcomeCancelled, res.Outcome)
			assert.Len(t, rec.of(evVisited), 3, "no events after cancellation")
			assert.Empty(t, rec.of(evPath))
			assert.Nil(t, res.Path)
		})
	}
}

func TestSearch_RunAfterCancelMatchesFresh(t *testing.T) {
	b := mustParse(t,
		"S...#...",
		".##.#.#.",
		"....#.#.",
		".##...#E",
	)
	for _, alg := range pathfind.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			fresh := &recorder{}
			want := search(t, b, alg, fresh)
			require.True(t, want.Found())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			stopped := &recorder{}
			visits := 0
			stopped.hook = func(e event) {
				if e.kind == evVisited {
					if visits++; visits == 3 {
						cancel()
					}
				}
			}
			res, err := pathfind.Search(ctx, b, alg, pathfind.WithSink(stopped), pathfind.WithSkipDelay())
			require.NoError(t, err)
			require.Equal(t, pathfind.OutcomeCancelled, res.Outcome)

			again := &recorder{}
			got := search(t, b, alg, again)
			assert.Equal(t, fresh.events, again.events)
			assert.Equal(t, want.Visited, got.Visited)
			assert.Equal(t, want.Path, got.Path)
			assert.Equal(t, want.Cost, got.Cost)
		})
	}
}

func TestSearch_CancelDuringPathWalk(t *testing.T) {
	b := mustParse(t, "S....E")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	rec.hook = func(e event) {
		if e.kind == evPath {
			cancel()
		}
	}
	res, err := pathfind.Search(ctx, b, pathfind.Dijkstra, pathfind.WithSink(rec), pathfind.WithSkipDelay())
	require.NoError(t, err)
	assert.Equal(t, pathfind.OutcomeCancelled, res.Outcome)
	assert.Equal(t, []gridgraph.Position{{Row: 0, Col: 5}}, rec.of(evPath), "only the first path cell is emitted")
}

func TestSearch_CancelInterruptsDelay(t *testing.T) {
	b := mustParse(t, "S.........E")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan struct{})
	var once sync.Once
	rec := &recorder{hook: func(e event) {
		if e.kind == evVisited {
			once.Do(func() { close(first) })
		}
	}}

	done := make(chan *pathfind.Result, 1)
	go func() {
		res, _ := pathfind.Search(ctx, b, pathfind.AStar,
			pathfind.WithSink(rec), pathfind.WithVisitDelay(time.Hour))
		done <- res
	}()

	<-first
	cancel()
	select {
	case res := <-done:
		assert.Equal(t, pathfind.OutcomeCancelled, res.Outcome)
		assert.Len(t, rec.of(evVisited), 1)
	case <-time.After(5 * time.Second):
		t.Fatal("Search did not return after cancellation")
	}
}

func TestSearch_PreCancelledContext(t *testing.T) {
	b := mustParse(t, "S.E")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	res, err := pathfind.Search(ctx, b, pathfind.Dijkstra, pathfind.WithSink(rec))
	require.NoError(t, err)
	assert.Equal(t, pathfind.OutcomeCancelled, res.Outcome)
	assert.Empty(t, rec.events)
}

// ------------------------------------------------------------------------
// 7. Pacing
// ------------------------------------------------------------------------

func TestSearch_DelaysApplied(t *testing.T) {
	b := mustParse(t, "S.E")
	began := time.Now()
	res, err := pathfind.Search(context.Background(), b, pathfind.Dijkstra,
		pathfind.WithVisitDelay(10*time.Millisecond),
		pathfind.WithPathDelay(10*time.Millisecond))
	require.NoError(t, err)
	require.True(t, res.Found())
	// 3 visits + 2 pauses between the 3 path cells
	assert.GreaterOrEqual(t, time.Since(began), 50*time.Millisecond)
}

func TestSearch_SinkFuncs(t *testing.T) {
	b := mustParse(t, "S.E")
	var visited, path int
	sink := pathfind.SinkFuncs{
		Visited: func(gridgraph.Position) { visited++ },
		Path:    func(gridgraph.Position) { path++ },
	}
	res := search(t, b, pathfind.Dijkstra, sink)
	assert.Equal(t, len(res.Visited), visited)
	assert.Equal(t, 3, path)
}

package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/gridpath/builder"
	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
)

// Controller drives runs of the search engine over one board.
// All methods are safe for concurrent use.
type Controller struct {
	board   *gridgraph.Board
	gate    *gate
	log     *slog.Logger
	metrics *Metrics

	base     context.Context // parent of every run context; cancelled by Close
	shutdown context.CancelFunc

	opMu sync.Mutex // serialises control operations

	mu         sync.Mutex // guards the fields below
	state      State
	alg        pathfind.Algorithm
	lastAlg    pathfind.Algorithm
	hasLast    bool
	active     *RunHandle
	last       *pathfind.Result
	visitDelay time.Duration
	pathDelay  time.Duration
	density    float64
	rng        *rand.Rand
	closed     bool
}

// New binds a controller to board and renderer.
func New(board *gridgraph.Board, renderer Renderer, opts ...Option) (*Controller, error) {
	if board == nil {
		return nil, ErrNilBoard
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	seed := cfg.MazeSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	base, shutdown := context.WithCancel(context.Background())
	return &Controller{
		board:      board,
		gate:       &gate{out: renderer},
		log:        logger.With(slog.String("component", "session")),
		metrics:    NewMetrics(cfg.Registerer),
		base:       base,
		shutdown:   shutdown,
		alg:        cfg.Algorithm,
		visitDelay: cfg.VisitDelay,
		pathDelay:  cfg.PathDelay,
		density:    cfg.MazeDensity,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// Board returns the controlled board. Callers must go through the controller
// for edits while a run may be active.
func (c *Controller) Board() *gridgraph.Board { return c.board }

// Metrics returns the controller's collectors.
func (c *Controller) Metrics() *Metrics { return c.metrics }

// State returns the current run state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Algorithm returns the selected algorithm.
func (c *Controller) Algorithm() pathfind.Algorithm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alg
}

// Active returns the in-flight run, or nil.
func (c *Controller) Active() *RunHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// LastResult returns the most recent finished run's result, or nil.
func (c *Controller) LastResult() *pathfind.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// SelectAlgorithm parses name and selects it for the next run. An active run
// is not affected.
func (c *Controller) SelectAlgorithm(name string) error {
	alg, err := pathfind.ParseAlgorithm(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.alg = alg
	c.mu.Unlock()
	c.log.Debug("algorithm selected", slog.String("algorithm", alg.String()))
	return nil
}

// SetDelays changes pacing for runs started afterwards.
func (c *Controller) SetDelays(visit, path time.Duration) error {
	if visit < 0 || path < 0 {
		return fmt.Errorf("%w: visit=%s path=%s", pathfind.ErrBadDelay, visit, path)
	}
	c.mu.Lock()
	c.visitDelay, c.pathDelay = visit, path
	c.mu.Unlock()
	return nil
}

// Start launches the selected algorithm. An active run is cancelled and
// awaited first; ctx bounds only that wait. Missing endpoints leave the
// controller untouched and return pathfind.ErrMissingEndpoints.
func (c *Controller) Start(ctx context.Context) (*RunHandle, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	alg := c.alg
	c.mu.Unlock()
	return c.startLocked(ctx, alg, false)
}

// Stop cancels the active run, waits for it to exit and clears the overlay.
// Safe to call in any state.
func (c *Controller) Stop() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	_ = c.cancelActive(context.Background())
	c.gate.advance()
	c.gate.clear()
}

// MoveEndpoint moves the end marker to pos and, if any algorithm has run in
// this session, immediately re-runs it without pacing. The returned handle is
// nil when nothing was restarted. An invalid or blocked pos is rejected
// before the active run is touched.
func (c *Controller) MoveEndpoint(ctx context.Context, pos gridgraph.Position) (*RunHandle, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.board.Validate(pos); err != nil {
		return nil, err
	}
	if c.board.IsObstacle(pos) {
		return nil, fmt.Errorf("end %v: %w", pos, gridgraph.ErrObstacleCell)
	}
	if err := c.cancelActive(ctx); err != nil {
		return nil, err
	}
	if err := c.board.SetEnd(pos); err != nil {
		return nil, err
	}
	c.gate.advance()
	c.gate.clear()

	c.mu.Lock()
	alg, rerun := c.lastAlg, c.hasLast
	c.mu.Unlock()
	if !rerun {
		return nil, nil
	}
	return c.startLocked(ctx, alg, true)
}

// SetStart places the start marker. Rejected with ErrBusy during a run.
func (c *Controller) SetStart(pos gridgraph.Position) error {
	return c.edit(func() error { return c.board.SetStart(pos) })
}

// SetEnd places the end marker. Rejected with ErrBusy during a run; use
// MoveEndpoint to move it live.
func (c *Controller) SetEnd(pos gridgraph.Position) error {
	return c.edit(func() error { return c.board.SetEnd(pos) })
}

// ToggleObstacle flips a wall. Rejected with ErrBusy during a run.
// Endpoints are never turned into walls.
func (c *Controller) ToggleObstacle(pos gridgraph.Position) (bool, error) {
	var blocked bool
	err := c.edit(func() error {
		var err error
		blocked, err = c.board.ToggleObstacle(pos)
		return err
	})
	return blocked, err
}

// ClearObstacles stops any run, removes every wall and clears the overlay.
func (c *Controller) ClearObstacles() {
	c.rebuild("obstacles cleared", c.board.ClearObstacles)
}

// Reset stops any run and wipes walls, endpoints and overlay.
func (c *Controller) Reset() {
	c.rebuild("board reset", c.board.Reset)
}

// GenerateMaze stops any run, wipes the board (endpoints included) and fills
// it with random walls. opts are applied after the controller's density and
// RNG, so callers may override either.
func (c *Controller) GenerateMaze(opts ...builder.BuilderOption) error {
	var err error
	c.rebuild("maze generated", func() {
		c.mu.Lock()
		base := []builder.BuilderOption{builder.WithRand(c.rng), builder.WithDensity(c.density)}
		c.mu.Unlock()
		err = builder.RandomObstacles(c.board, append(base, opts...)...)
	})
	return err
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{State: c.state, Algorithm: c.alg, Last: c.last}
	c.mu.Unlock()

	s.Rows, s.Cols = c.board.Dimensions()
	if p, ok := c.board.Start(); ok {
		s.Start = &p
	}
	if p, ok := c.board.End(); ok {
		s.End = &p
	}
	s.Obstacles = c.board.Obstacles()
	if s.Start != nil && s.End != nil {
		s.Reachable = c.board.Connected(*s.Start, *s.End)
	}
	return s
}

// Close stops any run and refuses further starts.
func (c *Controller) Close() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	_ = c.cancelActive(context.Background())
	c.gate.advance()
	c.shutdown()
}

// startLocked launches alg. Caller holds opMu.
func (c *Controller) startLocked(ctx context.Context, alg pathfind.Algorithm, skipDelay bool) (*RunHandle, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if _, ok := c.board.Start(); !ok {
		return nil, pathfind.ErrMissingEndpoints
	}
	if _, ok := c.board.End(); !ok {
		return nil, pathfind.ErrMissingEndpoints
	}
	if err := c.cancelActive(ctx); err != nil {
		return nil, err
	}

	gen := c.gate.advance()
	c.gate.clear()

	runCtx, cancel := context.WithCancel(c.base)
	h := &RunHandle{
		ID:         uuid.New(),
		Algorithm:  alg,
		Generation: gen,
		SkipDelay:  skipDelay,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	c.mu.Lock()
	c.active = h
	c.state = Running
	c.lastAlg, c.hasLast = alg, true
	opts := []pathfind.Option{
		pathfind.WithSink(c.gate.sink(gen)),
		pathfind.WithVisitDelay(c.visitDelay),
		pathfind.WithPathDelay(c.pathDelay),
		pathfind.WithLogger(c.log),
	}
	c.mu.Unlock()
	if skipDelay {
		opts = append(opts, pathfind.WithSkipDelay())
	}

	c.metrics.RunsStarted.WithLabelValues(alg.String()).Inc()
	c.metrics.ActiveRuns.Inc()
	c.log.Info("run started",
		slog.String("run_id", h.ID.String()),
		slog.String("algorithm", alg.String()),
		slog.Uint64("generation", gen),
		slog.Bool("skip_delay", skipDelay))

	go c.run(runCtx, h, opts)
	return h, nil
}

// run executes one search and publishes its result.
func (c *Controller) run(ctx context.Context, h *RunHandle, opts []pathfind.Option) {
	defer close(h.done)
	defer h.cancel()

	res, err := pathfind.Search(ctx, c.board, h.Algorithm, opts...)
	h.res, h.err = res, err

	c.mu.Lock()
	if c.active == h {
		c.active = nil
		c.state = Idle
	}
	if res != nil && res.Outcome != pathfind.OutcomeCancelled {
		c.last = res
	}
	c.mu.Unlock()

	c.metrics.ActiveRuns.Dec()
	if err != nil {
		c.metrics.RunsFinished.WithLabelValues(h.Algorithm.String(), "error").Inc()
		c.log.Warn("run failed", slog.String("run_id", h.ID.String()), slog.Any("error", err))
		return
	}
	c.metrics.RunsFinished.WithLabelValues(h.Algorithm.String(), res.Outcome.String()).Inc()
	c.metrics.VisitedCells.Observe(float64(len(res.Visited)))
	c.log.Info("run finished",
		slog.String("run_id", h.ID.String()),
		slog.String("outcome", res.Outcome.String()),
		slog.Int("visited", len(res.Visited)),
		slog.Int("cost", res.Cost))
}

// cancelActive supersedes the active run, if any, and waits for its
// goroutine to exit. Caller holds opMu.
func (c *Controller) cancelActive(ctx context.Context) error {
	c.mu.Lock()
	h := c.active
	if h == nil {
		c.mu.Unlock()
		return nil
	}
	c.state = CancelPending
	c.mu.Unlock()

	// no event from h after this point
	c.gate.advance()
	h.cancel()
	c.log.Debug("run cancel requested", slog.String("run_id", h.ID.String()))

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("session: waiting for run %s: %w", h.ID, ctx.Err())
	}
}

// edit applies fn when no run is active.
func (c *Controller) edit(fn func() error) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	busy := c.active != nil
	c.mu.Unlock()
	if busy {
		return ErrBusy
	}
	return fn()
}

// rebuild stops any run, applies fn to the board and clears the overlay.
func (c *Controller) rebuild(msg string, fn func()) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	_ = c.cancelActive(context.Background())
	fn()
	c.gate.advance()
	c.gate.clear()
	c.log.Info(msg)
}

type nopRenderer struct{ pathfind.NopSink }

func (nopRenderer) Clear() {}

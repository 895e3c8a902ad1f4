package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/gridpath/builder"
	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
)

var (
	// ErrBusy rejects board edits while a run is active.
	ErrBusy = errors.New("session: a run is in progress")
	// ErrNilBoard indicates New was called without a board.
	ErrNilBoard = errors.New("session: board is nil")
	// ErrClosed indicates the controller has been closed.
	ErrClosed = errors.New("session: controller closed")
)

// State is the controller's run state.
type State int32

const (
	Idle State = iota
	Running
	CancelPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case CancelPending:
		return "cancelPending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText lets State appear as a string in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Renderer is a Sink whose overlay can be wiped between runs.
type Renderer interface {
	pathfind.Sink
	Clear()
}

// Options configures a Controller.
type Options struct {
	Algorithm   pathfind.Algorithm
	VisitDelay  time.Duration
	PathDelay   time.Duration
	MazeDensity float64
	MazeSeed    int64 // 0 seeds from the clock
	Logger      *slog.Logger          // nil: discard
	Registerer  prometheus.Registerer // nil: metrics are kept but not exported
}

// Option represents a functional option for New.
type Option func(*Options)

// DefaultOptions returns A*, the engine's default delays and the default maze density.
func DefaultOptions() Options {
	return Options{
		Algorithm:   pathfind.AStar,
		VisitDelay:  pathfind.DefaultVisitDelay,
		PathDelay:   pathfind.DefaultPathDelay,
		MazeDensity: builder.DefaultDensity,
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// WithAlgorithm preselects alg. Panics on an unknown value.
func WithAlgorithm(alg pathfind.Algorithm) Option {
	if !alg.Valid() {
		panic(fmt.Sprintf("session: WithAlgorithm(%d)", int(alg)))
	}
	return func(o *Options) { o.Algorithm = alg }
}

// WithDelays sets the animation pacing. Panics on negative durations.
func WithDelays(visit, path time.Duration) Option {
	if visit < 0 || path < 0 {
		panic(pathfind.ErrBadDelay.Error())
	}
	return func(o *Options) { o.VisitDelay, o.PathDelay = visit, path }
}

// WithMaze sets the obstacle density and seed used by GenerateMaze.
// Panics if density is outside [0,1].
func WithMaze(density float64, seed int64) Option {
	if density < 0 || density > 1 {
		panic(fmt.Sprintf("session: WithMaze(%g) density not in [0,1]", density))
	}
	return func(o *Options) { o.MazeDensity, o.MazeSeed = density, seed }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithRegisterer exports metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) { o.Registerer = reg }
}

// Snapshot is a consistent copy of the controller and board state.
type Snapshot struct {
	State      State
	Algorithm  pathfind.Algorithm
	Rows, Cols int
	Start      *gridgraph.Position
	End        *gridgraph.Position
	Obstacles  []gridgraph.Position
	Reachable  bool             // start and end share an open region; false unless both are set
	Last       *pathfind.Result // most recent finished run, nil if none
}

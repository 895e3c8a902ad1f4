// Package pathfind defines the algorithm identifiers, collaborator interfaces,
// functional options, results and sentinel errors of the grid search engine.
package pathfind

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// Sentinel errors returned by Search.
var (
	// ErrMissingEndpoints indicates the start or end marker is unset.
	ErrMissingEndpoints = errors.New("pathfind: start and end must both be set")

	// ErrUnknownAlgorithm indicates an Algorithm value or name that is not recognised.
	ErrUnknownAlgorithm = errors.New("pathfind: unknown algorithm")

	// ErrNilGrid indicates a nil Grid was passed to Search.
	ErrNilGrid = errors.New("pathfind: grid is nil")

	// ErrInvalidPosition is gridgraph.ErrInvalidPosition, re-exported so callers
	// of this package can match it without importing gridgraph.
	ErrInvalidPosition = gridgraph.ErrInvalidPosition

	// ErrBadDelay indicates a negative animation delay (raised via panic by the option constructors).
	ErrBadDelay = errors.New("pathfind: delay must be non-negative")
)

// Grid is the read-only view of the board a search needs.
// *gridgraph.Board satisfies it.
type Grid interface {
	Dimensions() (rows, cols int)
	IsObstacle(p gridgraph.Position) bool
	Neighbors(p gridgraph.Position) iter.Seq[gridgraph.Position]
	Start() (gridgraph.Position, bool)
	End() (gridgraph.Position, bool)
}

// Sink receives cell-state transitions as a search progresses.
// Calls are made synchronously from the searching goroutine.
type Sink interface {
	// OnVisited marks a cell as expanded.
	OnVisited(p gridgraph.Position)
	// OnCurrent is a transient highlight for the cell being expanded.
	OnCurrent(p gridgraph.Position)
	// OnPath marks a cell on the final path (emitted end → start).
	OnPath(p gridgraph.Position)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) OnVisited(gridgraph.Position) {}
func (NopSink) OnCurrent(gridgraph.Position) {}
func (NopSink) OnPath(gridgraph.Position)    {}

// SinkFuncs adapts plain functions to Sink. Nil fields are skipped.
type SinkFuncs struct {
	Visited func(gridgraph.Position)
	Current func(gridgraph.Position)
	Path    func(gridgraph.Position)
}

func (s SinkFuncs) OnVisited(p gridgraph.Position) {
	if s.Visited != nil {
		s.Visited(p)
	}
}

func (s SinkFuncs) OnCurrent(p gridgraph.Position) {
	if s.Current != nil {
		s.Current(p)
	}
}

func (s SinkFuncs) OnPath(p gridgraph.Position) {
	if s.Path != nil {
		s.Path(p)
	}
}

// Algorithm selects a search variant.
type Algorithm int

const (
	// Dijkstra is uniform-cost search: priority = distance from start.
	Dijkstra Algorithm = iota
	// GreedyBestFirst ignores accumulated cost: priority = Manhattan(cell, end).
	GreedyBestFirst
	// AStar uses priority = distance + Manhattan(cell, end).
	AStar
	// BidirectionalAStar runs exactly the same search as AStar.
	//
	// Deprecated: no reverse search is performed; kept so traces and saved
	// selections from the original visualizer keep working. Use Bidirectional.
	BidirectionalAStar
	// Bidirectional is a meet-in-the-middle uniform-cost search that expands
	// alternately from start and from end.
	Bidirectional

	algorithmCount
)

var algorithmNames = [algorithmCount]string{
	Dijkstra:           "dijkstra",
	GreedyBestFirst:    "greedyBestFirst",
	AStar:              "aStar",
	BidirectionalAStar: "bidirectionalAStar",
	Bidirectional:      "bidirectional",
}

// Algorithms lists every variant in declaration order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, 0, algorithmCount)
	for a := Dijkstra; a < algorithmCount; a++ {
		out = append(out, a)
	}
	return out
}

// Valid reports whether a names a known variant.
func (a Algorithm) Valid() bool { return a >= 0 && a < algorithmCount }

// String returns the canonical name, e.g. "aStar".
func (a Algorithm) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// ParseAlgorithm maps a name to an Algorithm. Matching is case-insensitive and
// accepts the aliases "ucs", "greedy" and "a*".
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "ucs", "uniformcost":
		return Dijkstra, nil
	case "greedy", "bestfirst":
		return GreedyBestFirst, nil
	case "a*", "astar":
		return AStar, nil
	}
	for a, n := range algorithmNames {
		if strings.ToLower(n) == key {
			return Algorithm(a), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseAlgorithm.
func (a *Algorithm) UnmarshalText(text []byte) error {
	v, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Outcome is the terminal state of a run. None of them is an error.
type Outcome int

const (
	// OutcomeFound means the end was reached and the path emitted.
	OutcomeFound Outcome = iota
	// OutcomeExhausted means the frontier emptied without reaching the end.
	OutcomeExhausted
	// OutcomeCancelled means the context was cancelled mid-run.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result describes a finished run.
//
//   - Visited: cells in the order they were expanded (each at most once).
//   - Depth:   settled distance of every visited cell. For Bidirectional the
//     distance is measured from whichever endpoint's search settled it first.
//   - Path:    start → end inclusive when Outcome is OutcomeFound, nil otherwise.
//   - Cost:    number of edges on Path, or -1 when there is no path.
type Result struct {
	Algorithm Algorithm
	Outcome   Outcome
	Visited   []gridgraph.Position
	Depth     map[gridgraph.Position]int
	Path      []gridgraph.Position
	Cost      int
}

// Found reports whether a path was produced.
func (r *Result) Found() bool { return r != nil && r.Outcome == OutcomeFound }

// Default animation pacing, matching what reads well at ~30px cells.
const (
	DefaultVisitDelay = 20 * time.Millisecond
	DefaultPathDelay  = 50 * time.Millisecond
)

// Options configures a single Search call.
//
// Sink       – receives visited/current/path events (default NopSink).
// VisitDelay – pause after each visited event.
// PathDelay  – pause after each path event except the last.
// SkipDelay  – ignore both delays (instant recompute while dragging).
// Logger     – debug logging of run start/finish (default: discard).
type Options struct {
	Sink       Sink
	VisitDelay time.Duration
	PathDelay  time.Duration
	SkipDelay  bool
	Logger     *slog.Logger
}

// Option represents a functional option for configuring Search.
type Option func(*Options)

// DefaultOptions returns the defaults: NopSink, DefaultVisitDelay,
// DefaultPathDelay, delays enabled, discard logger.
func DefaultOptions() Options {
	return Options{
		Sink:       NopSink{},
		VisitDelay: DefaultVisitDelay,
		PathDelay:  DefaultPathDelay,
		Logger:     slog.New(slog.DiscardHandler),
	}
}

// WithSink routes events to s. A nil sink is ignored.
func WithSink(s Sink) Option {
	return func(o *Options) {
		if s != nil {
			o.Sink = s
		}
	}
}

// WithVisitDelay sets the pause after each visited event.
// Panics with ErrBadDelay if d is negative.
func WithVisitDelay(d time.Duration) Option {
	if d < 0 {
		panic(ErrBadDelay.Error())
	}
	return func(o *Options) { o.VisitDelay = d }
}

// WithPathDelay sets the pause after each path event.
// Panics with ErrBadDelay if d is negative.
func WithPathDelay(d time.Duration) Option {
	if d < 0 {
		panic(ErrBadDelay.Error())
	}
	return func(o *Options) { o.PathDelay = d }
}

// WithSkipDelay disables all pacing.
func WithSkipDelay() Option {
	return func(o *Options) { o.SkipDelay = true }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

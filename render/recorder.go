package render

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// EventKind tags a recorded event.
type EventKind uint8

const (
	EventVisited EventKind = iota
	EventCurrent
	EventPath
	EventClear
)

func (k EventKind) String() string {
	switch k {
	case EventVisited:
		return "visited"
	case EventCurrent:
		return "current"
	case EventPath:
		return "path"
	case EventClear:
		return "clear"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one call made on a Recorder. Pos is zero for EventClear.
type Event struct {
	Kind EventKind
	Pos  gridgraph.Position
}

// Recorder keeps every event in arrival order. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) OnVisited(p gridgraph.Position) { r.add(Event{Kind: EventVisited, Pos: p}) }
func (r *Recorder) OnCurrent(p gridgraph.Position) { r.add(Event{Kind: EventCurrent, Pos: p}) }
func (r *Recorder) OnPath(p gridgraph.Position)    { r.add(Event{Kind: EventPath, Pos: p}) }

// Clear is recorded as an event; the history is kept.
func (r *Recorder) Clear() { r.add(Event{Kind: EventClear}) }

// Events returns a copy of the history.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Positions returns the positions of every event of kind k, in order.
func (r *Recorder) Positions(k EventKind) []gridgraph.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []gridgraph.Position
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e.Pos)
		}
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset drops the history.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

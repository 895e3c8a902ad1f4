// Package render holds the sinks that turn engine events into something
// visible: an in-memory cell-state Canvas, an event Recorder, a Tee fan-out
// and the lipgloss Frame renderer used by the terminal front-ends.
package render

import (
	"sync"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// Target is a sink whose overlay can be wiped between runs.
// Canvas, Recorder and the server hub all satisfy it.
type Target interface {
	OnVisited(p gridgraph.Position)
	OnCurrent(p gridgraph.Position)
	OnPath(p gridgraph.Position)
	Clear()
}

// CellState is the search overlay of one cell.
type CellState uint8

const (
	// Unvisited cells carry no overlay.
	Unvisited CellState = iota
	Visited
	Current
	Path
)

func (s CellState) String() string {
	switch s {
	case Visited:
		return "visited"
	case Current:
		return "current"
	case Path:
		return "path"
	default:
		return "unvisited"
	}
}

// Canvas records the search overlay of a rows×cols board. Path wins over
// Current, Current over Visited. Only one cell is Current at a time.
// Safe for concurrent use; events outside the canvas are ignored.
type Canvas struct {
	mu         sync.RWMutex
	rows, cols int
	visited    []bool
	path       []bool
	current    int // row-major index, -1 when none
	nVisited   int
	nPath      int
}

// NewCanvas returns an empty overlay for a rows×cols board.
func NewCanvas(rows, cols int) *Canvas {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Canvas{
		rows:    rows,
		cols:    cols,
		visited: make([]bool, rows*cols),
		path:    make([]bool, rows*cols),
		current: -1,
	}
}

// Dimensions returns the canvas size.
func (c *Canvas) Dimensions() (rows, cols int) { return c.rows, c.cols }

func (c *Canvas) index(p gridgraph.Position) (int, bool) {
	if p.Row < 0 || p.Row >= c.rows || p.Col < 0 || p.Col >= c.cols {
		return 0, false
	}
	return p.Row*c.cols + p.Col, true
}

func (c *Canvas) OnVisited(p gridgraph.Position) {
	i, ok := c.index(p)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visited[i] {
		c.visited[i] = true
		c.nVisited++
	}
}

func (c *Canvas) OnCurrent(p gridgraph.Position) {
	i, ok := c.index(p)
	if !ok {
		return
	}
	c.mu.Lock()
	c.current = i
	c.mu.Unlock()
}

func (c *Canvas) OnPath(p gridgraph.Position) {
	i, ok := c.index(p)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.path[i] {
		c.path[i] = true
		c.nPath++
	}
	// the highlight ends once the path is being drawn
	c.current = -1
}

// Clear wipes the overlay.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.visited)
	clear(c.path)
	c.current = -1
	c.nVisited, c.nPath = 0, 0
}

// State returns the overlay of p; Unvisited for out-of-range positions.
func (c *Canvas) State(p gridgraph.Position) CellState {
	i, ok := c.index(p)
	if !ok {
		return Unvisited
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.path[i]:
		return Path
	case c.current == i:
		return Current
	case c.visited[i]:
		return Visited
	default:
		return Unvisited
	}
}

// Current returns the highlighted cell, if any.
func (c *Canvas) Current() (gridgraph.Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current < 0 {
		return gridgraph.Position{}, false
	}
	return gridgraph.Pos(c.current/c.cols, c.current%c.cols), true
}

// Counts returns how many cells are marked visited and path.
func (c *Canvas) Counts() (visited, path int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nVisited, c.nPath
}

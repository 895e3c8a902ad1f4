package tui

import (
	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/render"
)

// Renderer is the session.Renderer the TUI hands to its controller. It draws
// into a render.Canvas and signals Updates without ever blocking the search.
type Renderer struct {
	*render.Canvas
	updates chan struct{}
}

// NewRenderer allocates a canvas of rows×cols.
func NewRenderer(rows, cols int) *Renderer {
	return &Renderer{
		Canvas:  render.NewCanvas(rows, cols),
		updates: make(chan struct{}, 1),
	}
}

// Updates fires at least once after any burst of changes.
func (r *Renderer) Updates() <-chan struct{} { return r.updates }

func (r *Renderer) OnVisited(p gridgraph.Position) { r.Canvas.OnVisited(p); r.poke() }
func (r *Renderer) OnCurrent(p gridgraph.Position) { r.Canvas.OnCurrent(p); r.poke() }
func (r *Renderer) OnPath(p gridgraph.Position)    { r.Canvas.OnPath(p); r.poke() }
func (r *Renderer) Clear()                         { r.Canvas.Clear(); r.poke() }

func (r *Renderer) poke() {
	select {
	case r.updates <- struct{}{}:
	default:
	}
}

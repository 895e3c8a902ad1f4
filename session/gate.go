package session

import (
	"sync"

	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
)

// gate forwards events to the renderer only for the current generation.
type gate struct {
	mu  sync.Mutex
	gen uint64
	out Renderer
}

// advance invalidates every outstanding sink and returns the new generation.
func (g *gate) advance() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	return g.gen
}

func (g *gate) clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.out.Clear()
}

func (g *gate) emit(gen uint64, fn func(Renderer)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return
	}
	fn(g.out)
}

// sink binds a pathfind.Sink to generation gen.
func (g *gate) sink(gen uint64) pathfind.Sink {
	return gatedSink{g: g, gen: gen}
}

type gatedSink struct {
	g   *gate
	gen uint64
}

func (s gatedSink) OnVisited(p gridgraph.Position) {
	s.g.emit(s.gen, func(r Renderer) { r.OnVisited(p) })
}

func (s gatedSink) OnCurrent(p gridgraph.Position) {
	s.g.emit(s.gen, func(r Renderer) { r.OnCurrent(p) })
}

func (s gatedSink) OnPath(p gridgraph.Position) {
	s.g.emit(s.gen, func(r Renderer) { r.OnPath(p) })
}

package render

import "github.com/katalvlaran/gridpath/gridgraph"

// Tee fans every call out to each target in order. Nil targets are dropped.
func Tee(targets ...Target) Target {
	kept := make(multi, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return kept
}

type multi []Target

func (m multi) OnVisited(p gridgraph.Position) {
	for _, t := range m {
		t.OnVisited(p)
	}
}

func (m multi) OnCurrent(p gridgraph.Position) {
	for _, t := range m {
		t.OnCurrent(p)
	}
}

func (m multi) OnPath(p gridgraph.Position) {
	for _, t := range m {
		t.OnPath(p)
	}
}

func (m multi) Clear() {
	for _, t := range m {
		t.Clear()
	}
}

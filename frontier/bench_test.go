package frontier_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/gridpath/frontier"
	"github.com/katalvlaran/gridpath/gridgraph"
)

// BenchmarkPushPop measures interleaved push/pop on a frontier that hovers
// around 1k entries, the typical size for a 100×100 board.
func BenchmarkPushPop(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	f := frontier.New(1024)
	for i := 0; i < 1000; i++ {
		f.Push(frontier.SearchNode{Pos: gridgraph.Pos(i, i), Priority: rng.Intn(200)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Push(frontier.SearchNode{Pos: gridgraph.Pos(i, 0), Priority: rng.Intn(200)})
		_, _ = f.PopMin()
	}
}

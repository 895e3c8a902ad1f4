package gridgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridpath/gridgraph"
)

func TestBreach(t *testing.T) {
	tests := []struct {
		name  string
		board []string
		want  []gridgraph.Position
	}{
		{"already connected", []string{"S.E"}, []gridgraph.Position{}},
		{"single wall", []string{"S#E"}, []gridgraph.Position{gridgraph.Pos(0, 1)}},
		{"double wall", []string{"S##E"}, []gridgraph.Position{gridgraph.Pos(0, 1), gridgraph.Pos(0, 2)}},
		{"detour is free", []string{
			"S#E",
			"...",
		}, []gridgraph.Position{}},
		{"thinnest wall wins", []string{
			"S.#..",
			"..#..",
			"###.E",
		}, []gridgraph.Position{gridgraph.Pos(0, 2)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := gridgraph.ParseBoard(tc.board)
			require.NoError(t, err)
			s, _ := b.Start()
			e, _ := b.End()

			got, err := b.Breach(s, e)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			for _, p := range got {
				require.NoError(t, b.SetObstacle(p, false))
			}
			assert.True(t, b.Connected(s, e))
		})
	}
}

func TestBreach_EnclosedEnd(t *testing.T) {
	b, err := gridgraph.ParseBoard([]string{
		"S....",
		"...#.",
		"..#E#",
		"...#.",
	})
	require.NoError(t, err)
	s, _ := b.Start()
	e, _ := b.End()
	require.False(t, b.Connected(s, e))

	walls, err := b.Breach(s, e)
	require.NoError(t, err)
	require.Len(t, walls, 1, "any one of the four surrounding walls suffices")
	assert.Equal(t, 1, gridgraph.Manhattan(walls[0], e))

	again, err := b.Breach(s, e)
	require.NoError(t, err)
	assert.Equal(t, walls, again, "deterministic")
}

func TestBreach_InvalidPosition(t *testing.T) {
	b, err := gridgraph.NewBoard(2, 2)
	require.NoError(t, err)
	_, err = b.Breach(gridgraph.Pos(0, 0), gridgraph.Pos(5, 5))
	require.ErrorIs(t, err, gridgraph.ErrInvalidPosition)
	_, err = b.Breach(gridgraph.Pos(-1, 0), gridgraph.Pos(1, 1))
	require.ErrorIs(t, err, gridgraph.ErrInvalidPosition)
}

func TestBreach_WalledEndpoints(t *testing.T) {
	b, err := gridgraph.ParseBoard([]string{"#.#"})
	require.NoError(t, err)
	got, err := b.Breach(gridgraph.Pos(0, 0), gridgraph.Pos(0, 2))
	require.NoError(t, err)
	assert.Equal(t, []gridgraph.Position{gridgraph.Pos(0, 0), gridgraph.Pos(0, 2)}, got)
}

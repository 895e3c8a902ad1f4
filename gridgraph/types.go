package gridgraph

import "fmt"

// Position addresses a single cell by row and column.
// It is a comparable value type; two positions are equal iff their coordinates are.
type Position struct {
	Row, Col int
}

// Pos is shorthand for Position{Row: row, Col: col}.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// String formats the position as "(row,col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Add returns p shifted by the given row/column offset.
func (p Position) Add(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

// Manhattan returns |a.Row-b.Row| + |a.Col-b.Col|.
// It is admissible (and consistent) for 4-connected unit-cost grids.
// Complexity: O(1).
func Manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// neighborOffsets lists the 4-neighbourhood in enumeration order:
// down, right, up, left. The order drives frontier tie-breaks downstream,
// so changing it changes every visitation trace.
var neighborOffsets = [4][2]int{
	{1, 0},  // down
	{0, 1},  // right
	{-1, 0}, // up
	{0, -1}, // left
}

// Cell runes understood by ParseBoard and produced by Board.String.
const (
	RuneOpen     = '.'
	RuneObstacle = '#'
	RuneStart    = 'S'
	RuneEnd      = 'E'
)

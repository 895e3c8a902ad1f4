// Package gridgraph models a fixed-size 2D board as an implicit 4-connected graph.
// It supports:
//
//   - Obstacle flags per cell (mutable by the user, read-only to searches)
//   - A single optional start and a single optional end marker
//   - Lazy neighbour enumeration in a fixed order (down, right, up, left)
//   - Connected components of open cells
//
// A cell is never simultaneously an obstacle and the start or end.
package gridgraph

import (
	"fmt"
	"iter"
	"strings"
	"sync"
)

// Board is a rows×cols grid with obstacles and optional endpoints.
// Dimensions are fixed at construction. All methods are safe for concurrent use.
type Board struct {
	mu sync.RWMutex

	rows, cols int
	obstacles  []bool // row-major, len rows*cols

	start, end       Position
	hasStart, hasEnd bool
}

// NewBoard constructs an empty board (no obstacles, no endpoints).
// Returns ErrEmptyGrid if rows or cols is less than one.
// Complexity: O(rows×cols) time and memory.
func NewBoard(rows, cols int) (*Board, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, rows, cols)
	}

	return &Board{
		rows:      rows,
		cols:      cols,
		obstacles: make([]bool, rows*cols),
	}, nil
}

// ParseBoard builds a board from ASCII rows: '.' open, '#' obstacle,
// 'S' start, 'E' end. Returns ErrEmptyGrid, ErrNonRectangular,
// ErrUnknownCell or ErrDuplicateEndpoint for malformed input.
func ParseBoard(lines []string) (*Board, error) {
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	cols := len(lines[0])
	for _, line := range lines {
		if len(line) != cols {
			return nil, ErrNonRectangular
		}
	}
	b, err := NewBoard(len(lines), cols)
	if err != nil {
		return nil, err
	}
	for r, line := range lines {
		for c, ch := range line {
			p := Position{Row: r, Col: c}
			switch ch {
			case RuneOpen:
			case RuneObstacle:
				b.obstacles[b.index(p)] = true
			case RuneStart:
				if b.hasStart {
					return nil, fmt.Errorf("%w: second %q at %v", ErrDuplicateEndpoint, ch, p)
				}
				b.start, b.hasStart = p, true
			case RuneEnd:
				if b.hasEnd {
					return nil, fmt.Errorf("%w: second %q at %v", ErrDuplicateEndpoint, ch, p)
				}
				b.end, b.hasEnd = p, true
			default:
				return nil, fmt.Errorf("%w: %q at %v", ErrUnknownCell, ch, p)
			}
		}
	}

	return b, nil
}

// Dimensions returns the fixed (rows, cols) of the board.
func (b *Board) Dimensions() (rows, cols int) {
	return b.rows, b.cols
}

// InBounds reports whether p lies within the board.
// Complexity: O(1).
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.rows && p.Col >= 0 && p.Col < b.cols
}

// Validate returns an error wrapping ErrInvalidPosition if p is off the board.
func (b *Board) Validate(p Position) error {
	if !b.InBounds(p) {
		return fmt.Errorf("%w: %v not in %dx%d", ErrInvalidPosition, p, b.rows, b.cols)
	}
	return nil
}

// IsObstacle reports whether p is blocked.
// Calling it with an out-of-range position is a contract violation and panics.
func (b *Board) IsObstacle(p Position) bool {
	if err := b.Validate(p); err != nil {
		panic(err)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.obstacles[b.index(p)]
}

// Neighbors yields the in-bounds 4-neighbours of p in the order
// down, right, up, left. Obstacles are not filtered.
func (b *Board) Neighbors(p Position) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for _, d := range neighborOffsets {
			q := p.Add(d[0], d[1])
			if !b.InBounds(q) {
				continue
			}
			if !yield(q) {
				return
			}
		}
	}
}

// Start returns the start marker and whether it is set.
func (b *Board) Start() (Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.start, b.hasStart
}

// End returns the end marker and whether it is set.
func (b *Board) End() (Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.end, b.hasEnd
}

// SetStart moves the start marker to p.
// Returns ErrInvalidPosition or ErrObstacleCell; the board is unchanged on error.
func (b *Board) SetStart(p Position) error {
	if err := b.Validate(p); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.obstacles[b.index(p)] {
		return fmt.Errorf("start %v: %w", p, ErrObstacleCell)
	}
	b.start, b.hasStart = p, true

	return nil
}

// SetEnd moves the end marker to p.
// Returns ErrInvalidPosition or ErrObstacleCell; the board is unchanged on error.
func (b *Board) SetEnd(p Position) error {
	if err := b.Validate(p); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.obstacles[b.index(p)] {
		return fmt.Errorf("end %v: %w", p, ErrObstacleCell)
	}
	b.end, b.hasEnd = p, true

	return nil
}

// ToggleObstacle flips the obstacle flag at p and returns the new state.
// Start and end cells are never turned into obstacles; toggling them is a no-op
// that reports false.
func (b *Board) ToggleObstacle(p Position) (bool, error) {
	if err := b.Validate(p); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isEndpoint(p) {
		return false, nil
	}
	i := b.index(p)
	b.obstacles[i] = !b.obstacles[i]

	return b.obstacles[i], nil
}

// SetObstacle forces the obstacle flag at p. Setting an obstacle on the start
// or end cell returns ErrObstacleCell.
func (b *Board) SetObstacle(p Position, blocked bool) error {
	if err := b.Validate(p); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if blocked && b.isEndpoint(p) {
		return fmt.Errorf("obstacle on endpoint %v: %w", p, ErrObstacleCell)
	}
	b.obstacles[b.index(p)] = blocked

	return nil
}

// ClearObstacles removes every obstacle.
func (b *Board) ClearObstacles() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.obstacles)
}

// ClearEndpoints unsets both start and end.
func (b *Board) ClearEndpoints() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasStart, b.hasEnd = false, false
	b.start, b.end = Position{}, Position{}
}

// Reset clears obstacles and endpoints.
func (b *Board) Reset() {
	b.ClearObstacles()
	b.ClearEndpoints()
}

// Obstacles returns all obstacle positions in row-major order.
func (b *Board) Obstacles() []Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Position
	for i, blocked := range b.obstacles {
		if blocked {
			out = append(out, b.Coordinate(i))
		}
	}
	return out
}

// String renders the board with the ParseBoard runes, one line per row.
func (b *Board) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var sb strings.Builder
	sb.Grow(b.rows * (b.cols + 1))
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			p := Position{Row: r, Col: c}
			switch {
			case b.hasStart && p == b.start:
				sb.WriteRune(RuneStart)
			case b.hasEnd && p == b.end:
				sb.WriteRune(RuneEnd)
			case b.obstacles[b.index(p)]:
				sb.WriteRune(RuneObstacle)
			default:
				sb.WriteRune(RuneOpen)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Index maps p to a row-major index: Row*cols + Col.
// Complexity: O(1).
func (b *Board) Index(p Position) int {
	return b.index(p)
}

// Coordinate converts a row-major index back to a Position.
// Complexity: O(1).
func (b *Board) Coordinate(idx int) Position {
	return Position{Row: idx / b.cols, Col: idx % b.cols}
}

func (b *Board) index(p Position) int {
	return p.Row*b.cols + p.Col
}

// isEndpoint must be called with b.mu held.
func (b *Board) isEndpoint(p Position) bool {
	return (b.hasStart && p == b.start) || (b.hasEnd && p == b.end)
}

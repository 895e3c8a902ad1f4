package gridgraph

import "errors"

var (
	// ErrEmptyGrid indicates a board with no rows or no columns.
	ErrEmptyGrid = errors.New("gridgraph: grid must have at least one row and one column")
	// ErrNonRectangular indicates ASCII rows of differing lengths.
	ErrNonRectangular = errors.New("gridgraph: all rows must have the same length")
	// ErrInvalidPosition indicates a coordinate outside the board.
	ErrInvalidPosition = errors.New("gridgraph: position out of range")
	// ErrObstacleCell indicates an attempt to place the start or end marker on an obstacle.
	ErrObstacleCell = errors.New("gridgraph: cell is an obstacle")
	// ErrUnknownCell indicates an unrecognised rune in ParseBoard input.
	ErrUnknownCell = errors.New("gridgraph: unknown cell rune")
	// ErrDuplicateEndpoint indicates more than one S or E in ParseBoard input.
	ErrDuplicateEndpoint = errors.New("gridgraph: duplicate start or end marker")
)

// Package gridgraph treats a fixed 2D board of cells as an implicit,
// 4-connected, unit-cost graph for interactive pathfinding.
//
// What:
//
//   - Board holds rows×cols cells, an obstacle flag per cell, and optional
//     start/end markers. A cell is never both an obstacle and an endpoint.
//   - Neighbors enumerates up to four in-bounds cells lazily, always in the
//     order down, right, up, left. Search traces depend on this order.
//   - ConnectedComponents/Connected answer reachability over open cells.
//   - ParseBoard/String convert to and from a compact ASCII form.
//
// Why:
//
//   - Pathfinding visualizers: the board is what the user paints on and what
//     the search engine reads from.
//   - Test fixtures: ASCII boards make traces easy to pin down.
//
// Complexity:
//
//   - IsObstacle, InBounds, Index, Coordinate: O(1).
//   - Neighbors: O(1) per call, at most 4 yields.
//   - ConnectedComponents, Connected: O(rows×cols), Memory: O(rows×cols).
//
// Concurrency:
//
//   - Board is guarded by an RW mutex: a search may read obstacles from one
//     goroutine while a front-end edits the board from another.
//
// Errors:
//
//   - ErrEmptyGrid: board with no rows or no columns.
//   - ErrNonRectangular: ragged ASCII input.
//   - ErrInvalidPosition: coordinate outside the board (IsObstacle panics with it).
//   - ErrObstacleCell: endpoint placed on an obstacle (or vice versa).
//   - ErrUnknownCell, ErrDuplicateEndpoint: malformed ASCII input.
package gridgraph

// Package pathfind is the grid search engine: Dijkstra, greedy best-first,
// A* and a bidirectional uniform-cost search over a 4-connected board with
// unit step costs, streaming every state change to a Sink so a renderer can
// animate it.
//
// What:
//
//   - Search(ctx, grid, alg, opts...) explores from grid.Start() to grid.End().
//   - Each expanded cell emits OnCurrent then OnVisited, followed by a
//     VisitDelay pause. On success the path is emitted end → start with a
//     PathDelay pause between cells.
//   - Neighbours are scanned down, right, up, left; equal frontier keys pop in
//     insertion order, so traces are deterministic.
//
// Priorities:
//
//	Dijkstra           g
//	GreedyBestFirst    h = Manhattan(cell, end)
//	AStar              g + h
//	BidirectionalAStar g + h (same search as AStar)
//	Bidirectional      g on each side, stop when minF + minB ≥ best meeting path
//
// Guarantees:
//
//   - No cell is expanded (or reported visited) twice.
//   - Dijkstra, AStar, BidirectionalAStar and Bidirectional return shortest
//     paths. GreedyBestFirst returns a valid path that may be longer.
//   - Cancelling ctx stops the run at the next check: before each pop, during
//     or after each pause, and before each path cell. No event is emitted
//     after the run observes cancellation, and Search returns OutcomeCancelled
//     with a nil error.
//
// Complexity:
//
//   - Time:  O(R·C·log(R·C)) excluding pacing.
//   - Space: O(R·C) for distance, predecessor and visited tables (twice for Bidirectional).
//
// Errors:
//
//   - ErrNilGrid, ErrUnknownAlgorithm, ErrMissingEndpoints, ErrInvalidPosition
//     are returned before any event is emitted.
//   - ErrBadDelay is raised via panic by WithVisitDelay / WithPathDelay.
package pathfind

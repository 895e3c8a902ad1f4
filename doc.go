// Package gridpath is a grid pathfinding visualizer: draw walls on a 2-D
// board, place a start and an end, and watch Dijkstra, greedy best-first, A*
// or a bidirectional search explore it cell by cell.
//
// The module is organised leaves first:
//
//	gridgraph/  Board, Position, 4-neighbour enumeration, components, breaches
//	frontier/   min-heap on (priority, insertion order)
//	pathfind/   the search engine: Search, Algorithm, Sink, Result
//	session/    Controller: single-flight runs, cancellation, live restarts
//	render/     Canvas, Recorder, Tee and the terminal Frame renderer
//	builder/    random maze fill
//	config/     YAML configuration, validation, logger, hot reload
//	tui/        bubbletea front end
//	server/     gin + websocket front end, Prometheus metrics
//	cmd/gridpath  the CLI: run, tui, serve, config
//
// Quick start:
//
//	b, _ := gridgraph.ParseBoard([]string{
//		"S.#..",
//		"..#..",
//		"....E",
//	})
//	res, _ := pathfind.Search(ctx, b, pathfind.AStar)
//	fmt.Println(res.Outcome, res.Cost) // found 6
package gridpath

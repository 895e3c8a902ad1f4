// Package session owns the interactive lifecycle around the search engine:
// which algorithm is selected, which run (if any) is in flight, and the board
// edits a user makes between runs.
//
// State machine:
//
//	Idle ──Start──▶ Running ──finish──▶ Idle
//	Running ──Stop/restart/MoveEndpoint──▶ CancelPending ──ack──▶ Idle / Running
//
// Single flight:
//
//   - Control operations (Start, Stop, MoveEndpoint, board edits) are
//     serialised; at most one run is active at any instant.
//   - Every run is tagged with a generation. Renderer calls go through a gate
//     that drops events from any generation but the current one, and
//     superseding a run bumps the generation under the gate lock. Once Stop or
//     a restart returns, the superseded run can no longer reach the renderer.
//   - Restart waits on the superseded run's completion channel; it never
//     sleeps a fixed grace period.
//
// Renderer calls are made with the gate lock held. A Renderer must not call
// back into the Controller.
package session

// SPDX-License-Identifier: MIT

// Package builder fills a gridgraph.Board with random obstacles ("create maze").
//
// The generator is a Bernoulli fill: every cell is blocked independently with
// probability Density (default 0.3), trialled in row-major order. Before the
// fill the board is wiped: obstacles and both endpoints are cleared. Endpoints
// are placed afterwards only if WithEndpoints is given; the cells they land on
// are forced open.
//
// Determinism:
//
//   - The RNG is explicit: WithSeed or WithRand. For 0 < Density < 1 a missing
//     RNG is an error (ErrNeedRandSource), never a silent time seed.
//   - For a fixed seed and board size the obstacle set is identical across runs.
//
// Option constructors validate and panic on meaningless input (WithRand(nil),
// density outside [0,1]). RandomObstacles itself only returns sentinel errors.
//
// Complexity: O(R·C) time, O(1) extra space.
package builder

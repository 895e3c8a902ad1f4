// SPDX-License-Identifier: MIT
// Package: gridpath/builder
//
// errors.go: sentinel errors for the builder package.
//
// Callers branch with errors.Is; implementations attach context with %w.

package builder

import "errors"

// ErrNilBoard indicates RandomObstacles was handed a nil board.
var ErrNilBoard = errors.New("builder: board is nil")

// ErrInvalidProbability indicates a density outside the closed interval [0,1].
var ErrInvalidProbability = errors.New("builder: probability out of range")

// ErrNeedRandSource indicates a stochastic fill without WithSeed/WithRand.
var ErrNeedRandSource = errors.New("builder: rng is required")

// SPDX-License-Identifier: MIT
// Package: gridpath/builder
//
// options.go: functional options for the builder package.
//
// Contract:
//   • Option constructors validate and panic on meaningless inputs.
//   • Determinism is explicit: seeding is done via WithSeed or WithRand.

package builder

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// BuilderOption customizes a fill by mutating builderConfig.
type BuilderOption func(*builderConfig)

// WithRand provides an explicit RNG. Panics on nil.
func WithRand(r *rand.Rand) BuilderOption {
	if r == nil {
		panic("builder: WithRand(nil)")
	}
	return func(c *builderConfig) {
		c.rng = r
	}
}

// WithSeed creates a new *rand.Rand with the given seed.
func WithSeed(seed int64) BuilderOption {
	return func(c *builderConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithDensity sets the obstacle probability. Panics outside [0,1].
func WithDensity(p float64) BuilderOption {
	if p < probMin || p > probMax {
		panic(fmt.Sprintf("builder: WithDensity(%g) not in [0,1]", p))
	}
	return func(c *builderConfig) {
		c.density = p
	}
}

// WithEndpoints places start and end after the fill, opening their cells.
// Positions are checked against the board when the fill runs.
func WithEndpoints(start, end gridgraph.Position) BuilderOption {
	return func(c *builderConfig) {
		c.placeEndpoints = true
		c.start, c.end = start, end
	}
}

// WithSolvable opens the fewest walls needed to join start and end after the
// fill. It has no effect without WithEndpoints.
func WithSolvable() BuilderOption {
	return func(c *builderConfig) {
		c.solvable = true
	}
}

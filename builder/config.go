// SPDX-License-Identifier: MIT
// Package: gridpath/builder
//
// config.go: internal configuration and deterministic defaults.
//
// Defaults:
//   • rng      = nil   (must be supplied for 0 < density < 1)
//   • density  = DefaultDensity
//   • no endpoints placed, no breach carved

package builder

import (
	"math/rand"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// DefaultDensity is the share of cells blocked by RandomObstacles.
const DefaultDensity = 0.3

// Probability domain for WithDensity.
const (
	probMin = 0.0
	probMax = 1.0
)

// builderConfig aggregates the knobs of a fill. Passed by value.
type builderConfig struct {
	rng     *rand.Rand
	density float64

	placeEndpoints bool
	start, end     gridgraph.Position
	solvable       bool
}

// newBuilderConfig applies opts in order over the defaults.
func newBuilderConfig(opts ...BuilderOption) builderConfig {
	cfg := builderConfig{density: DefaultDensity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

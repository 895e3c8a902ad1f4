// SPDX-License-Identifier: MIT
// Package: gridpath/builder
//
// maze.go: RandomObstacles and Generate.
//
// Trial order is row-major (r asc, c asc), one rng.Float64() per cell, so the
// obstacle set for a fixed seed depends only on the board dimensions.

package builder

import (
	"fmt"

	"github.com/katalvlaran/gridpath/gridgraph"
)

const methodRandomObstacles = "RandomObstacles"

// RandomObstacles wipes b and blocks each cell with the configured density.
// On error b is left untouched.
func RandomObstacles(b *gridgraph.Board, opts ...BuilderOption) error {
	if b == nil {
		return fmt.Errorf("%s: %w", methodRandomObstacles, ErrNilBoard)
	}
	cfg := newBuilderConfig(opts...)

	// 1) Validate before any mutation.
	if cfg.density < probMin || cfg.density > probMax {
		return fmt.Errorf("%s: p=%.6f not in [%.1f,%.1f]: %w",
			methodRandomObstacles, cfg.density, probMin, probMax, ErrInvalidProbability)
	}
	if cfg.rng == nil && cfg.density > probMin && cfg.density < probMax {
		return fmt.Errorf("%s: %w", methodRandomObstacles, ErrNeedRandSource)
	}
	if cfg.placeEndpoints {
		for _, p := range [2]gridgraph.Position{cfg.start, cfg.end} {
			if err := b.Validate(p); err != nil {
				return fmt.Errorf("%s: endpoint: %w", methodRandomObstacles, err)
			}
		}
	}

	// 2) Wipe, then fill row-major.
	b.Reset()
	rows, cols := b.Dimensions()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !blocked(cfg, cfg.density) {
				continue
			}
			if err := b.SetObstacle(gridgraph.Pos(r, c), true); err != nil {
				return fmt.Errorf("%s: SetObstacle(%d,%d): %w", methodRandomObstacles, r, c, err)
			}
		}
	}

	// 3) Optional endpoints on forced-open cells.
	if !cfg.placeEndpoints {
		return nil
	}
	for _, p := range [2]gridgraph.Position{cfg.start, cfg.end} {
		if err := b.SetObstacle(p, false); err != nil {
			return fmt.Errorf("%s: open %v: %w", methodRandomObstacles, p, err)
		}
	}
	if err := b.SetStart(cfg.start); err != nil {
		return fmt.Errorf("%s: %w", methodRandomObstacles, err)
	}
	if err := b.SetEnd(cfg.end); err != nil {
		return fmt.Errorf("%s: %w", methodRandomObstacles, err)
	}

	// 4) Optional breach so the end is reachable.
	if !cfg.solvable {
		return nil
	}
	walls, err := b.Breach(cfg.start, cfg.end)
	if err != nil {
		return fmt.Errorf("%s: breach: %w", methodRandomObstacles, err)
	}
	for _, p := range walls {
		if err := b.SetObstacle(p, false); err != nil {
			return fmt.Errorf("%s: open %v: %w", methodRandomObstacles, p, err)
		}
	}

	return nil
}

// Generate allocates a rows×cols board and fills it with RandomObstacles.
func Generate(rows, cols int, opts ...BuilderOption) (*gridgraph.Board, error) {
	b, err := gridgraph.NewBoard(rows, cols)
	if err != nil {
		return nil, err
	}
	if err := RandomObstacles(b, opts...); err != nil {
		return nil, err
	}
	return b, nil
}

// blocked runs one Bernoulli trial. p ∈ {0,1} needs no RNG.
func blocked(cfg builderConfig, p float64) bool {
	switch {
	case p <= probMin:
		return false
	case p >= probMax:
		return true
	default:
		return cfg.rng.Float64() < p
	}
}

// Package config loads the gridpath YAML configuration, fills defaults,
// validates ranges and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/gridpath/builder"
	"github.com/katalvlaran/gridpath/pathfind"
)

// ErrInvalidConfig wraps every load and validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Defaults.
const (
	DefaultRows      = 20
	DefaultCols      = 40
	DefaultAlgorithm = "aStar"
	DefaultAddr      = ":8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config is the top-level configuration.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Algorithm string          `yaml:"algorithm" validate:"algorithm"`
	Animation AnimationConfig `yaml:"animation"`
	Maze      MazeConfig      `yaml:"maze"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// GridConfig sizes the board.
type GridConfig struct {
	Rows int `yaml:"rows" validate:"gte=1,lte=1000"`
	Cols int `yaml:"cols" validate:"gte=1,lte=1000"`
}

// AnimationConfig paces runs. Zero selects the engine default; pacing is
// switched off per run (the run command's --no-delay), not here.
type AnimationConfig struct {
	VisitDelay time.Duration `yaml:"visit_delay" validate:"gte=0"`
	PathDelay  time.Duration `yaml:"path_delay" validate:"gte=0"`
}

// MazeConfig drives random obstacle generation. Seed 0 seeds from the clock.
// Solvable carves the fewest walls needed to join the corner endpoints.
type MazeConfig struct {
	Density  *float64 `yaml:"density" validate:"omitempty,gte=0,lte=1"`
	Seed     int64    `yaml:"seed"`
	Solvable bool     `yaml:"solvable"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MazeDensity returns the configured density, or builder.DefaultDensity when unset.
func (m MazeConfig) MazeDensity() float64 {
	if m.Density == nil {
		return builder.DefaultDensity
	}
	return *m.Density
}

// ParsedAlgorithm returns Algorithm as a pathfind.Algorithm.
func (c Config) ParsedAlgorithm() (pathfind.Algorithm, error) {
	return pathfind.ParseAlgorithm(c.Algorithm)
}

// Default returns a fully populated default configuration.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Grid.Rows == 0 {
		c.Grid.Rows = DefaultRows
	}
	if c.Grid.Cols == 0 {
		c.Grid.Cols = DefaultCols
	}
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}
	if c.Animation.VisitDelay == 0 {
		c.Animation.VisitDelay = pathfind.DefaultVisitDelay
	}
	if c.Animation.PathDelay == 0 {
		c.Animation.PathDelay = pathfind.DefaultPathDelay
	}
	if c.Maze.Density == nil {
		d := builder.DefaultDensity
		c.Maze.Density = &d
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// algorithm accepts every name ParseAlgorithm understands
	_ = v.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
		_, err := pathfind.ParseAlgorithm(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Parse decodes YAML, applies defaults and validates. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var c Config
	if len(data) > 0 {
		if err := decodeStrict(data, &c); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads path. An empty path or a missing file yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal renders c as YAML (used by `gridpath config`).
func Marshal(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// Package config provides configuration loading and access for the homing
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World    WorldConfig    `yaml:"world"`
	Home     PointConfig    `yaml:"home"`
	Homing   HomingConfig   `yaml:"homing"`
	Field    FieldConfig    `yaml:"field"`
	Render   RenderConfig   `yaml:"render"`
	Optimize OptimizeConfig `yaml:"optimize"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig describes the obstacles and the grid the bee moves on.
type WorldConfig struct {
	Obstacles []ObstacleConfig `yaml:"obstacles"`
	Grid      GridConfig       `yaml:"grid"`
}

// ObstacleConfig describes one obstacle. Shape is "circle" or "polygon".
type ObstacleConfig struct {
	Name     string        `yaml:"name"`
	Shape    string        `yaml:"shape"`
	X        float64       `yaml:"x"`      // circle center
	Y        float64       `yaml:"y"`      // circle center
	Radius   float64       `yaml:"radius"` // circle radius
	Vertices []PointConfig `yaml:"vertices"`
}

// PointConfig is a 2D point.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// GridConfig holds the traversable grid bounds. Minima are inclusive,
// maxima exclusive.
type GridConfig struct {
	MinX int `yaml:"min_x"`
	MaxX int `yaml:"max_x"`
	MinY int `yaml:"min_y"`
	MaxY int `yaml:"max_y"`
}

// HomingConfig holds the homing vector weights.
type HomingConfig struct {
	TurningWeight     float64 `yaml:"turning_weight"`
	PositioningWeight float64 `yaml:"positioning_weight"`
	TurningSign       float64 `yaml:"turning_sign"`   // +1 or -1
	HomeTolerance     float64 `yaml:"home_tolerance"` // radians
}

// FieldConfig holds vector field evaluation settings.
type FieldConfig struct {
	Workers   int `yaml:"workers"`    // 0 = GOMAXPROCS
	ChunkRows int `yaml:"chunk_rows"` // grid rows per work item
}

// RenderConfig holds PNG output settings.
type RenderConfig struct {
	Output     string  `yaml:"output"`
	CellPixels float64 `yaml:"cell_pixels"` // pixels per world unit
	Margin     int     `yaml:"margin"`
	Caption    bool    `yaml:"caption"`
}

// OptimizeConfig holds bounds for the weight search.
type OptimizeConfig struct {
	MaxEvals          int         `yaml:"max_evals"`
	Population        int         `yaml:"population"` // 0 = auto
	InitStepSize      float64     `yaml:"init_step_size"`
	TurningWeight     RangeConfig `yaml:"turning_weight"`
	PositioningWeight RangeConfig `yaml:"positioning_weight"`
}

// RangeConfig is a closed interval.
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	GridWidth  int
	GridHeight int
	NumCells   int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	g := c.World.Grid
	if g.MaxX <= g.MinX || g.MaxY <= g.MinY {
		return fmt.Errorf("grid [%d,%d)x[%d,%d) is empty", g.MinX, g.MaxX, g.MinY, g.MaxY)
	}
	if c.Render.CellPixels <= 0 {
		return fmt.Errorf("render.cell_pixels must be positive, got %v", c.Render.CellPixels)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	g := c.World.Grid
	c.Derived.GridWidth = g.MaxX - g.MinX
	c.Derived.GridHeight = g.MaxY - g.MinY
	c.Derived.NumCells = c.Derived.GridWidth * c.Derived.GridHeight
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

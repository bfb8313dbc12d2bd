// Package config provides configuration loading and access for the strategy.
//
// Two sources are merged: compiled-in YAML defaults (optionally overridden by
// a user file) for everything the strategy is free to tune, and the engine's
// handshake line for the constants the game dictates. ApplyHandshake merges
// the handshake into the Config returned by Cfg; after that it is not mutated.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all strategy configuration parameters.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Planner PlannerConfig `yaml:"planner"`
	Debug   DebugConfig   `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GameConfig holds arena physics constants. Most arrive via the engine
// handshake; the defaults match the official local runner.
type GameConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Viscosity       float64 `yaml:"viscosity"`
	InertionFactor  float64 `yaml:"inertion_factor"`
	SpeedFactor     float64 `yaml:"speed_factor"`
	TicksTilFusion  int     `yaml:"ticks_til_fusion"`
	VirusRadius     float64 `yaml:"virus_radius"`
	FoodRadius      float64 `yaml:"food_radius"`
	FoodMass        float64 `yaml:"food_mass"`
	EjectionRadius  float64 `yaml:"ejection_radius"`
	EjectionMass    float64 `yaml:"ejection_mass"`
	RadiusFactor    float64 `yaml:"radius_factor"`
	MassEatFactor   float64 `yaml:"mass_eat_factor"`
	DiamEatFactor   float64 `yaml:"diam_eat_factor"`
	VisFactor       float64 `yaml:"vis_factor"`
	VisShift        float64 `yaml:"vis_shift"`
	RadHurtFactor   float64 `yaml:"rad_hurt_factor"`
	MinBurstMass    float64 `yaml:"min_burst_mass"`
	MinSplitMass    float64 `yaml:"min_split_mass"`
	SplitStartSpeed float64 `yaml:"split_start_speed"`
	ShrinkEveryTick int     `yaml:"shrink_every_tick"`
	MinShrinkMass   float64 `yaml:"min_shrink_mass"`
	ShrinkFactor    float64 `yaml:"shrink_factor"`
}

// PlannerConfig holds lookahead search tuning parameters.
type PlannerConfig struct {
	RootEps             float64 `yaml:"root_eps"`
	SkipDistance        float64 `yaml:"skip_distance"`
	ExpansionsPerTick   int     `yaml:"expansions_per_tick"`
	DiscoveryAngles     int     `yaml:"discovery_angles"`
	MinExpansionDepth   int     `yaml:"min_expansion_depth"`
	SpeedReward         float64 `yaml:"speed_reward"`
	SafetyMarginFactor  float64 `yaml:"safety_margin_factor"`
	SafetyMarginPenalty float64 `yaml:"safety_margin_penalty"`
	AvgTickTime         float64 `yaml:"avg_tick_time"` // seconds
	SplitInterval       int     `yaml:"split_interval"`
	Seed                int64   `yaml:"seed"`
}

// DebugConfig holds debug-mode output settings.
type DebugConfig struct {
	LogPath    string `yaml:"log_path"`
	OutputDir  string `yaml:"output_dir"`
	PerfWindow int    `yaml:"perf_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	// EatDepthFactor is 1 - 2*DiamEatFactor, the fraction of the prey radius
	// that must lie inside the eater for a capture.
	EatDepthFactor float64
	// RootEpsSq is RootEps squared, compared against squared distances.
	RootEpsSq float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
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

	cfg.computeDerived()

	return cfg, nil
}

// ApplyHandshake merges the engine's handshake values over the loaded
// defaults. GAME_WIDTH and GAME_HEIGHT are required; every other key falls
// back to the local-runner defaults when absent.
func (c *Config) ApplyHandshake(values map[string]float64) error {
	for _, key := range []string{"GAME_WIDTH", "GAME_HEIGHT"} {
		if _, ok := values[key]; !ok {
			return fmt.Errorf("handshake: missing required key %q", key)
		}
	}
	for key, v := range values {
		switch key {
		case "GAME_WIDTH":
			c.Game.Width = v
		case "GAME_HEIGHT":
			c.Game.Height = v
		case "VISCOSITY":
			c.Game.Viscosity = v
		case "INERTION_FACTOR":
			c.Game.InertionFactor = v
		case "SPEED_FACTOR":
			c.Game.SpeedFactor = v
		case "TICKS_TIL_FUSION":
			c.Game.TicksTilFusion = int(v)
		case "VIRUS_RADIUS":
			c.Game.VirusRadius = v
		case "FOOD_RADIUS":
			c.Game.FoodRadius = v
		case "FOOD_MASS":
			c.Game.FoodMass = v
		case "EJECTION_RADIUS":
			c.Game.EjectionRadius = v
		case "EJECTION_MASS":
			c.Game.EjectionMass = v
		}
		// Unrecognized keys are ignored: the engine sends more than we use.
	}
	c.computeDerived()
	return nil
}

// WriteYAML saves the current configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.EatDepthFactor = 1 - 2*c.Game.DiamEatFactor
	c.Derived.RootEpsSq = c.Planner.RootEps * c.Planner.RootEps
}

// Radius returns the cell radius for a given mass.
func (c *Config) Radius(m float64) float64 {
	return c.Game.RadiusFactor * math.Sqrt(m)
}

// MaxSpeed returns the speed cap for a cell of the given mass.
func (c *Config) MaxSpeed(m float64) float64 {
	return c.Game.SpeedFactor / math.Sqrt(m)
}

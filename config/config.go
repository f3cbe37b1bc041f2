// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flock/traits"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig       `yaml:"screen"`
	World        WorldConfig        `yaml:"world"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Flocking     FlockingConfig     `yaml:"flocking"`
	Avoidance    AvoidanceConfig    `yaml:"avoidance"`
	Food         FoodConfig         `yaml:"food"`
	Energy       EnergyConfig       `yaml:"energy"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Population   PopulationConfig   `yaml:"population"`
	Traits       TraitsConfig       `yaml:"traits"`
	Obstacles    ObstaclesConfig    `yaml:"obstacles"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// PhysicsConfig holds movement and indexing parameters.
type PhysicsConfig struct {
	GridCellSize      float64 `yaml:"grid_cell_size"`
	GlobalSpeedFactor float64 `yaml:"global_speed_factor"` // position += velocity * this
	MaxSpeed          float64 `yaml:"max_speed"`           // velocity length after every force
	BodyRadius        float64 `yaml:"body_radius"`
	Boundary          string  `yaml:"boundary"`           // wrap | bounce
	Workers           int     `yaml:"workers"`            // 0 = GOMAXPROCS, 1 = sequential
	ParallelThreshold int     `yaml:"parallel_threshold"` // minimum population for the worker pool
}

// FlockingConfig holds boids steering constants.
type FlockingConfig struct {
	NumNeighbors        int     `yaml:"num_neighbors"`
	CohesionDivisor     float64 `yaml:"cohesion_divisor"`
	SeparationDistance  float64 `yaml:"separation_distance"` // linear; compared squared against squared distance
	SeparationRepulsion float64 `yaml:"separation_repulsion"`
	SeparationEpsilon   float64 `yaml:"separation_epsilon"`
	SeparationDamping   float64 `yaml:"separation_damping"` // separation weight = strength / this
	ForceScale          float64 `yaml:"force_scale"`
	CohesionScale       float64 `yaml:"cohesion_scale"`
	AlignmentScale      float64 `yaml:"alignment_scale"`
	SeparationScale     float64 `yaml:"separation_scale"`
}

// AvoidanceConfig holds obstacle avoidance parameters for both policies.
type AvoidanceConfig struct {
	Policy             string  `yaml:"policy"` // reactive | predictive
	ReactionDistance   float64 `yaml:"reaction_distance"`
	BandScale          float64 `yaml:"band_scale"` // vertical band = this * avoidance_distance trait
	EvasionMagnitude   float64 `yaml:"evasion_magnitude"`
	WeightScale        float64 `yaml:"weight_scale"`
	StrengthScale      float64 `yaml:"strength_scale"` // live slider multiplier
	HorizonFrames      float64 `yaml:"horizon_frames"`
	PredictionStrength float64 `yaml:"prediction_strength"`
	SafetyBuffer       float64 `yaml:"safety_buffer"` // scaled by avoidance_distance trait
	Epsilon            float64 `yaml:"epsilon"`
}

// FoodConfig holds food seeking and spawning parameters.
type FoodConfig struct {
	ScanRadius        float64 `yaml:"scan_radius"`
	EnergyValue       float64 `yaml:"energy_value"`
	Radius            float64 `yaml:"radius"`
	SatiationFraction float64 `yaml:"satiation_fraction"` // energy mode: seek only below this * threshold
	SpawnInterval     int     `yaml:"spawn_interval"`     // ticks between spawn waves
	SpawnCount        int     `yaml:"spawn_count"`        // items per wave
	MaxItems          int     `yaml:"max_items"`
	PatchScale        float64 `yaml:"patch_scale"`     // noise frequency for food patches
	PatchThreshold    float64 `yaml:"patch_threshold"` // minimum noise value accepted
}

// EnergyConfig holds metabolic parameters for energy-mode reproduction.
type EnergyConfig struct {
	Initial      float64 `yaml:"initial"`
	Offspring    float64 `yaml:"offspring"`
	DrainPerTick float64 `yaml:"drain_per_tick"`
}

// ReproductionConfig holds reproduction policy parameters.
type ReproductionConfig struct {
	Mode                 string  `yaml:"mode"`      // energy | counter
	Threshold            float64 `yaml:"threshold"` // energy units or food count, per mode
	Cost                 float64 `yaml:"cost"`
	MatingRadius         float64 `yaml:"mating_radius"`
	CrossoverProbability float64 `yaml:"crossover_probability"`
	SpawnJitter          float64 `yaml:"spawn_jitter"`
	CounterRequiresMate  bool    `yaml:"counter_requires_mate"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate float64 `yaml:"rate"`
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	Initial       int     `yaml:"initial"`
	Max           int     `yaml:"max"`            // 0 = cap_multiplier * initial
	CapMultiplier float64 `yaml:"cap_multiplier"` // used when max is 0
}

// TraitConfig holds the spawn distribution and clamp for one trait.
type TraitConfig struct {
	Initial float64 `yaml:"initial"`
	Jitter  float64 `yaml:"jitter"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// TraitsConfig holds per-trait configuration.
type TraitsConfig struct {
	Cohesion          TraitConfig `yaml:"cohesion"`
	Alignment         TraitConfig `yaml:"alignment"`
	Separation        TraitConfig `yaml:"separation"`
	Avoidance         TraitConfig `yaml:"avoidance"`
	FoodAttraction    TraitConfig `yaml:"food_attraction"`
	AvoidanceDistance TraitConfig `yaml:"avoidance_distance"`
}

// ObstaclesConfig holds parameters for the obstacle spawner.
type ObstaclesConfig struct {
	Initial       int     `yaml:"initial"`
	Max           int     `yaml:"max"`
	SpawnInterval int     `yaml:"spawn_interval"`
	CometFraction float64 `yaml:"comet_fraction"` // share of spawns that are comets
	MinSize       float64 `yaml:"min_size"`
	MaxSize       float64 `yaml:"max_size"`
	MinSpeed      float64 `yaml:"min_speed"`
	MaxSpeed      float64 `yaml:"max_speed"`
	TrailLength   float64 `yaml:"trail_length"` // comet trail as a multiple of head size
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow    int `yaml:"stats_window"`    // ticks per stats window
	PerfWindow     int `yaml:"perf_window"`     // ticks averaged by the perf collector
	FrameInterval  int `yaml:"frame_interval"`  // headless PNG frame interval (0 = off)
	StreamInterval int `yaml:"stream_interval"` // ticks between websocket frames
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	WorldW32      float32
	WorldH32      float32
	PopulationCap int
	TraitBounds   traits.Bounds
	TraitMeans    traits.Set
	TraitJitter   traits.Set
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse merges the given YAML over the embedded defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns an independent copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	worldW, worldH := c.WorldSize()
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)

	c.Derived.PopulationCap = c.Population.Max
	if c.Derived.PopulationCap == 0 {
		c.Derived.PopulationCap = int(c.Population.CapMultiplier * float64(c.Population.Initial))
	}

	for k, tc := range c.Traits.ByKind() {
		c.Derived.TraitBounds[k] = traits.Range{Min: float32(tc.Min), Max: float32(tc.Max)}
		c.Derived.TraitMeans[k] = float32(tc.Initial)
		c.Derived.TraitJitter[k] = float32(tc.Jitter)
	}
}

// WorldSize returns the world dimensions, defaulting to the screen size.
func (c *Config) WorldSize() (w, h int) {
	w, h = c.World.Width, c.World.Height
	if w == 0 {
		w = c.Screen.Width
	}
	if h == 0 {
		h = c.Screen.Height
	}
	return w, h
}

// ByKind returns the trait configs indexed by traits.Kind.
func (t TraitsConfig) ByKind() [traits.Count]TraitConfig {
	return [traits.Count]TraitConfig{
		traits.Cohesion:          t.Cohesion,
		traits.Alignment:         t.Alignment,
		traits.Separation:        t.Separation,
		traits.Avoidance:         t.Avoidance,
		traits.FoodAttraction:    t.FoodAttraction,
		traits.AvoidanceDistance: t.AvoidanceDistance,
	}
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

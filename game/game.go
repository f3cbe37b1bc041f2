// Package game owns the bird population: the ECS world, the per-tick update
// and the telemetry hooks around it.
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// ErrIndexCorrupt is returned when the spatial index disagrees with the population.
// The host should stop calling Tick.
var ErrIndexCorrupt = errors.New("spatial index corrupt")

// Options configures a Game beyond the simulation config.
type Options struct {
	Seed          int64
	LogStats      bool
	OutputDir     string
	SnapshotDir   string
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64

	birdMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Genome,
		components.Organism,
	]
	birdFilter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Genome,
		components.Organism,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	rotMap    *ecs.Map1[components.Rotation]
	bodyMap   *ecs.Map1[components.Body]
	energyMap *ecs.Map1[components.Energy]
	genomeMap *ecs.Map1[components.Genome]
	orgMap    *ecs.Map1[components.Organism]

	grid     *systems.SpatialGrid
	policy   systems.AvoidancePolicy
	geometry systems.World
	flock    systems.FlockParams
	avoid    systems.AvoidanceParams
	breed    systems.BreedParams
	parallel *parallelState

	// Per-tick buffers, indexed by snapshot slot
	entities  []ecs.Entity
	states    []systems.AgentState
	intents   []intent
	obstacles []systems.Obstacle
	pending   []offspring
	mates     []systems.Neighbor
	cells     []int32
	counts    tickCounts

	tick              int32
	nextID            uint32
	collisionCount    int
	reproductionCount int
	lastStats         telemetry.Stats

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)

	// beforeUpdate runs at the start of every per-bird update. Tests use it to inject faults.
	beforeUpdate func(id uint32)
}

// New creates a game from cfg and spawns the initial population.
// cfg is copied; later changes go through SetTuning.
func New(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()

	g := &Game{
		cfg:     cfg.Clone(),
		world:   world,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		rngSeed: opts.Seed,
		nextID:  1,
		birdMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Genome,
			components.Organism,
		](world),
		birdFilter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Genome,
			components.Organism,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		rotMap:    ecs.NewMap1[components.Rotation](world),
		bodyMap:   ecs.NewMap1[components.Body](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		genomeMap: ecs.NewMap1[components.Genome](world),
		orgMap:    ecs.NewMap1[components.Organism](world),

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
	}

	if err := g.refreshParams(); err != nil {
		return nil, err
	}
	g.grid = systems.NewSpatialGrid(g.geometry.Width, g.geometry.Height, float32(g.cfg.Physics.GridCellSize))
	g.parallel = newParallelState(g.cfg.Physics.Workers)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(g.cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	g.spawnInitialPopulation()
	g.lastStats = g.computeStats()
	return g, nil
}

// refreshParams rebuilds the per-tick parameter structs from the config.
func (g *Game) refreshParams() error {
	cfg := g.cfg

	boundary, err := systems.ParseBoundary(cfg.Physics.Boundary)
	if err != nil {
		return err
	}
	mode, err := systems.ParseReproductionMode(cfg.Reproduction.Mode)
	if err != nil {
		return err
	}

	g.geometry = systems.World{
		Width:    cfg.Derived.WorldW32,
		Height:   cfg.Derived.WorldH32,
		Radius:   float32(cfg.Physics.BodyRadius),
		Boundary: boundary,
	}

	sep := float32(cfg.Flocking.SeparationDistance)
	g.flock = systems.FlockParams{
		CohesionDivisor:  float32(cfg.Flocking.CohesionDivisor),
		SeparationDistSq: sep * sep,
		Repulsion:        float32(cfg.Flocking.SeparationRepulsion),
		Epsilon:          float32(cfg.Flocking.SeparationEpsilon),
		Damping:          float32(cfg.Flocking.SeparationDamping),
		ForceScale:       float32(cfg.Flocking.ForceScale),
		MaxSpeed:         float32(cfg.Physics.MaxSpeed),
		CohesionScale:    float32(cfg.Flocking.CohesionScale),
		AlignmentScale:   float32(cfg.Flocking.AlignmentScale),
		SeparationScale:  float32(cfg.Flocking.SeparationScale),
	}

	a := cfg.Avoidance
	g.avoid = systems.AvoidanceParams{
		ReactionDistance:   float32(a.ReactionDistance),
		BandScale:          float32(a.BandScale),
		EvasionMagnitude:   float32(a.EvasionMagnitude),
		WeightScale:        float32(a.WeightScale),
		StrengthScale:      float32(a.StrengthScale),
		SpeedFactor:        float32(cfg.Physics.GlobalSpeedFactor),
		HorizonFrames:      a.HorizonFrames,
		PredictionStrength: a.PredictionStrength,
		SafetyBuffer:       a.SafetyBuffer,
		Epsilon:            a.Epsilon,
	}
	g.policy, err = systems.NewAvoidancePolicy(a.Policy, g.avoid)
	if err != nil {
		return err
	}

	r := cfg.Reproduction
	g.breed = systems.BreedParams{
		Mode:                 mode,
		Threshold:            float32(r.Threshold),
		Cost:                 float32(r.Cost),
		MatingRadius:         float32(r.MatingRadius),
		CrossoverProbability: float32(r.CrossoverProbability),
		MutationRate:         float32(cfg.Mutation.Rate),
		CounterRequiresMate:  r.CounterRequiresMate,
		SpawnJitter:          float32(r.SpawnJitter),
		Bounds:               cfg.Derived.TraitBounds,
	}
	return nil
}

// SetTuning validates and applies live-tunable parameters.
// They take effect from the next tick. On error nothing changes.
func (g *Game) SetTuning(t config.Tuning) error {
	if err := g.cfg.ApplyTuning(t); err != nil {
		return err
	}
	return g.refreshParams()
}

// Tuning returns the live-tunable parameters currently in effect.
func (g *Game) Tuning() config.Tuning {
	return g.cfg.Tuning()
}

// Config returns the game's private config. Callers must not modify it.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// TickCount returns the number of completed ticks.
func (g *Game) TickCount() int32 {
	return g.tick
}

// Count returns the number of live birds.
func (g *Game) Count() int {
	return g.lastStats.Count
}

// Stats returns the summary computed at the end of the last tick.
func (g *Game) Stats() telemetry.Stats {
	return g.lastStats
}

// Perf returns rolling tick timings.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame records frame timing for the windowed viewer.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Lifetime returns the lifetime stats of a live bird, or nil.
func (g *Game) Lifetime(id uint32) *telemetry.LifetimeStats {
	return g.lifetimeTracker.Get(id)
}

// Close stops the worker pool and closes output files.
func (g *Game) Close() error {
	g.parallel.stopWorkers()
	return g.outputManager.Close()
}

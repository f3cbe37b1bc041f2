package config

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/flock/traits"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Policy and mode names accepted in config files.
const (
	BoundaryWrap   = "wrap"
	BoundaryBounce = "bounce"

	PolicyReactive   = "reactive"
	PolicyPredictive = "predictive"

	ModeEnergy  = "energy"
	ModeCounter = "counter"
)

type validator struct {
	errs []error
}

func (v *validator) failf(field, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: %s %s", ErrInvalid, field, fmt.Sprintf(format, args...)))
}

func (v *validator) positive(field string, x float64) {
	if !(x > 0) {
		v.failf(field, "must be > 0, got %v", x)
	}
}

func (v *validator) nonNegative(field string, x float64) {
	if !(x >= 0) {
		v.failf(field, "must be >= 0, got %v", x)
	}
}

func (v *validator) unit(field string, x float64) {
	if !(x >= 0 && x <= 1) {
		v.failf(field, "must be in [0, 1], got %v", x)
	}
}

func (v *validator) oneOf(field, got string, allowed ...string) {
	for _, a := range allowed {
		if got == a {
			return
		}
	}
	v.failf(field, "must be one of %v, got %q", allowed, got)
}

// Validate checks every field and returns all problems joined together.
// It never adjusts values.
func (c *Config) Validate() error {
	v := &validator{}

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		v.failf("screen", "dimensions must be > 0, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.World.Width < 0 || c.World.Height < 0 {
		v.failf("world", "dimensions must be >= 0, got %dx%d", c.World.Width, c.World.Height)
	}

	p := c.Physics
	v.positive("physics.grid_cell_size", p.GridCellSize)
	v.positive("physics.global_speed_factor", p.GlobalSpeedFactor)
	v.positive("physics.max_speed", p.MaxSpeed)
	v.positive("physics.body_radius", p.BodyRadius)
	v.oneOf("physics.boundary", p.Boundary, BoundaryWrap, BoundaryBounce)
	if p.Workers < 0 {
		v.failf("physics.workers", "must be >= 0, got %d", p.Workers)
	}
	if p.ParallelThreshold < 0 {
		v.failf("physics.parallel_threshold", "must be >= 0, got %d", p.ParallelThreshold)
	}

	f := c.Flocking
	if f.NumNeighbors < 1 {
		v.failf("flocking.num_neighbors", "must be >= 1, got %d", f.NumNeighbors)
	}
	v.positive("flocking.cohesion_divisor", f.CohesionDivisor)
	v.nonNegative("flocking.separation_distance", f.SeparationDistance)
	v.nonNegative("flocking.separation_repulsion", f.SeparationRepulsion)
	v.positive("flocking.separation_epsilon", f.SeparationEpsilon)
	v.positive("flocking.separation_damping", f.SeparationDamping)
	v.positive("flocking.force_scale", f.ForceScale)
	v.nonNegative("flocking.cohesion_scale", f.CohesionScale)
	v.nonNegative("flocking.alignment_scale", f.AlignmentScale)
	v.nonNegative("flocking.separation_scale", f.SeparationScale)

	a := c.Avoidance
	v.oneOf("avoidance.policy", a.Policy, PolicyReactive, PolicyPredictive)
	v.nonNegative("avoidance.reaction_distance", a.ReactionDistance)
	v.nonNegative("avoidance.band_scale", a.BandScale)
	v.nonNegative("avoidance.evasion_magnitude", a.EvasionMagnitude)
	v.nonNegative("avoidance.weight_scale", a.WeightScale)
	v.nonNegative("avoidance.strength_scale", a.StrengthScale)
	v.positive("avoidance.horizon_frames", a.HorizonFrames)
	v.nonNegative("avoidance.prediction_strength", a.PredictionStrength)
	v.nonNegative("avoidance.safety_buffer", a.SafetyBuffer)
	v.positive("avoidance.epsilon", a.Epsilon)

	fd := c.Food
	v.nonNegative("food.scan_radius", fd.ScanRadius)
	v.nonNegative("food.energy_value", fd.EnergyValue)
	v.positive("food.radius", fd.Radius)
	v.unit("food.satiation_fraction", fd.SatiationFraction)
	if fd.SpawnInterval < 1 {
		v.failf("food.spawn_interval", "must be >= 1, got %d", fd.SpawnInterval)
	}
	if fd.SpawnCount < 0 || fd.MaxItems < 0 {
		v.failf("food", "spawn_count and max_items must be >= 0, got %d and %d", fd.SpawnCount, fd.MaxItems)
	}
	v.positive("food.patch_scale", fd.PatchScale)
	v.unit("food.patch_threshold", fd.PatchThreshold)

	e := c.Energy
	v.nonNegative("energy.initial", e.Initial)
	v.nonNegative("energy.offspring", e.Offspring)
	v.nonNegative("energy.drain_per_tick", e.DrainPerTick)

	r := c.Reproduction
	v.oneOf("reproduction.mode", r.Mode, ModeEnergy, ModeCounter)
	v.positive("reproduction.threshold", r.Threshold)
	v.nonNegative("reproduction.cost", r.Cost)
	if r.Mode == ModeEnergy && r.Cost > r.Threshold {
		v.failf("reproduction.cost", "must not exceed threshold %v, got %v", r.Threshold, r.Cost)
	}
	v.nonNegative("reproduction.mating_radius", r.MatingRadius)
	v.unit("reproduction.crossover_probability", r.CrossoverProbability)
	v.nonNegative("reproduction.spawn_jitter", r.SpawnJitter)

	v.unit("mutation.rate", c.Mutation.Rate)

	pop := c.Population
	if pop.Initial < 0 {
		v.failf("population.initial", "must be >= 0, got %d", pop.Initial)
	}
	switch {
	case pop.Max < 0:
		v.failf("population.max", "must be >= 0, got %d", pop.Max)
	case pop.Max > 0 && pop.Max < pop.Initial:
		v.failf("population.max", "must be >= initial %d, got %d", pop.Initial, pop.Max)
	case pop.Max == 0 && !(pop.CapMultiplier >= 1):
		v.failf("population.cap_multiplier", "must be >= 1 when max is 0, got %v", pop.CapMultiplier)
	}

	for k, tc := range c.Traits.ByKind() {
		field := "traits." + traits.Kind(k).String()
		if !(tc.Min >= 0 && tc.Min <= tc.Max) {
			v.failf(field, "needs 0 <= min <= max, got [%v, %v]", tc.Min, tc.Max)
			continue
		}
		if tc.Initial < tc.Min || tc.Initial > tc.Max {
			v.failf(field+".initial", "must be within [%v, %v], got %v", tc.Min, tc.Max, tc.Initial)
		}
		v.nonNegative(field+".jitter", tc.Jitter)
	}

	o := c.Obstacles
	if o.Initial < 0 || o.Max < 0 || o.SpawnInterval < 1 {
		v.failf("obstacles", "needs initial >= 0, max >= 0 and spawn_interval >= 1, got %d, %d, %d", o.Initial, o.Max, o.SpawnInterval)
	}
	v.unit("obstacles.comet_fraction", o.CometFraction)
	if !(o.MinSize > 0 && o.MinSize <= o.MaxSize) {
		v.failf("obstacles", "needs 0 < min_size <= max_size, got %v, %v", o.MinSize, o.MaxSize)
	}
	if !(o.MinSpeed >= 0 && o.MinSpeed <= o.MaxSpeed) {
		v.failf("obstacles", "needs 0 <= min_speed <= max_speed, got %v, %v", o.MinSpeed, o.MaxSpeed)
	}
	v.nonNegative("obstacles.trail_length", o.TrailLength)

	t := c.Telemetry
	if t.StatsWindow < 1 || t.PerfWindow < 1 || t.FrameInterval < 0 || t.StreamInterval < 1 {
		v.failf("telemetry", "needs stats_window, perf_window, stream_interval >= 1 and frame_interval >= 0")
	}

	return errors.Join(v.errs...)
}

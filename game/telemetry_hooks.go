package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/traits"
)

// computeStats summarises the live population. Event counts are left for the caller.
func (g *Game) computeStats() telemetry.Stats {
	var sets []traits.Set
	var energySum, counterSum float64
	var maxGen uint32

	query := g.birdFilter.Query()
	for query.Next() {
		_, _, _, _, energy, genome, _ := query.Get()
		if !energy.Alive {
			continue
		}
		sets = append(sets, genome.Traits)
		energySum += float64(energy.Value)
		counterSum += float64(energy.FoodCounter)
		maxGen = max(maxGen, genome.Generation)
	}

	stats := telemetry.Stats{
		Tick:              g.tick,
		Count:             len(sets),
		MaxGeneration:     maxGen,
		CollisionCount:    g.collisionCount,
		ReproductionCount: g.reproductionCount,
	}
	stats.SetTraitStats(telemetry.ComputeTraitStats(sets))
	if n := len(sets); n > 0 {
		stats.AvgEnergy = energySum / float64(n)
		stats.AvgFoodCounter = counterSum / float64(n)
	}
	return stats
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.lastStats, g.sampleEnergies())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleEnergies collects live energy values for percentile calculation.
func (g *Game) sampleEnergies() []float64 {
	var energies []float64
	query := g.birdFilter.Query()
	for query.Next() {
		_, _, _, _, energy, _, _ := query.Get()
		if energy.Alive {
			energies = append(energies, float64(energy.Value))
		}
	}
	return energies
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.Snapshot()
	snapshot.Bookmark = bookmark

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir, telemetry.FormatJSON)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot captures the live population and counters in ascending ID order.
func (g *Game) Snapshot() *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:           telemetry.SnapshotVersion,
		RNGSeed:           g.rngSeed,
		WorldWidth:        g.geometry.Width,
		WorldHeight:       g.geometry.Height,
		Tick:              g.tick,
		NextID:            g.nextID,
		CollisionCount:    g.collisionCount,
		ReproductionCount: g.reproductionCount,
	}

	query := g.birdFilter.Query()
	for query.Next() {
		pos, vel, rot, body, energy, genome, org := query.Get()
		if !energy.Alive {
			continue
		}

		var lifetime *telemetry.LifetimeStats
		if ls := g.lifetimeTracker.Get(org.ID); ls != nil {
			cp := *ls
			lifetime = &cp
		}

		snapshot.Birds = append(snapshot.Birds, telemetry.BirdState{
			ID:          org.ID,
			X:           pos.X,
			Y:           pos.Y,
			VelX:        vel.X,
			VelY:        vel.Y,
			Heading:     rot.Heading,
			Radius:      body.Radius,
			Energy:      energy.Value,
			FoodCounter: energy.FoodCounter,
			Traits:      genome.Traits,
			Generation:  genome.Generation,
			ParentA:     genome.ParentA,
			ParentB:     genome.ParentB,
			Lifetime:    lifetime,
		})
	}

	sortBirdStates(snapshot.Birds)
	return snapshot
}

// Restore replaces the population with the birds in snapshot. Snapshots larger
// than the population cap are rejected and leave the game unchanged.
// The random stream is reseeded from the snapshot seed and tick.
func (g *Game) Restore(snapshot *telemetry.Snapshot) error {
	if snapshot.Version != telemetry.SnapshotVersion {
		return fmt.Errorf("%w: %d", telemetry.ErrSnapshotVersion, snapshot.Version)
	}
	if snapshot.WorldWidth != g.geometry.Width || snapshot.WorldHeight != g.geometry.Height {
		return fmt.Errorf("snapshot world %vx%v does not match %vx%v",
			snapshot.WorldWidth, snapshot.WorldHeight, g.geometry.Width, g.geometry.Height)
	}

	if limit := g.cfg.Derived.PopulationCap; len(snapshot.Birds) > limit {
		return fmt.Errorf("snapshot holds %d birds, population cap is %d", len(snapshot.Birds), limit)
	}

	g.removeAll()

	g.tick = snapshot.Tick
	g.rngSeed = snapshot.RNGSeed
	g.rng = rand.New(rand.NewSource(snapshot.RNGSeed + int64(snapshot.Tick)))
	g.collisionCount = snapshot.CollisionCount
	g.reproductionCount = snapshot.ReproductionCount

	var maxID uint32
	for _, b := range snapshot.Birds {
		pos := components.Position{X: b.X, Y: b.Y}
		vel := components.Velocity{X: b.VelX, Y: b.VelY}
		rot := components.Rotation{Heading: b.Heading}
		body := components.Body{Radius: b.Radius}
		energy := components.Energy{Value: b.Energy, FoodCounter: b.FoodCounter, Alive: true}
		genome := components.Genome{
			Traits:     g.breed.Bounds.Clamp(b.Traits),
			Generation: b.Generation,
			ParentA:    b.ParentA,
			ParentB:    b.ParentB,
		}
		birthTick := snapshot.Tick
		if b.Lifetime != nil {
			birthTick = b.Lifetime.BirthTick
		}
		org := components.Organism{ID: b.ID, BirthTick: birthTick}

		g.birdMapper.NewEntity(&pos, &vel, &rot, &body, &energy, &genome, &org)
		if b.Lifetime != nil {
			g.lifetimeTracker.Restore(b.ID, *b.Lifetime)
		} else {
			g.lifetimeTracker.Register(b.ID, birthTick, b.Generation, b.Energy)
		}
		maxID = max(maxID, b.ID)
	}

	g.nextID = max(snapshot.NextID, maxID+1)
	g.lastStats = g.computeStats()
	return nil
}

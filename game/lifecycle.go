package game

import (
	"log/slog"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/traits"
)

// spawnInitialPopulation creates the starting birds with jittered traits.
func (g *Game) spawnInitialPopulation() {
	cfg := g.cfg
	d := &cfg.Derived

	for i := 0; i < cfg.Population.Initial; i++ {
		x, y := g.geometry.Contain(g.rng.Float32()*g.geometry.Width, g.rng.Float32()*g.geometry.Height)
		heading := g.rng.Float32() * 2 * math.Pi
		t := traits.Jittered(d.TraitMeans, d.TraitJitter, d.TraitBounds, g.rng)

		g.spawnBird(offspring{X: x, Y: y, Heading: heading, Traits: t}, float32(cfg.Energy.Initial))
	}
}

// spawnBird creates a bird flying along its heading at max speed.
func (g *Game) spawnBird(o offspring, energyValue float32) (ecs.Entity, uint32) {
	id := g.nextID
	g.nextID++

	speed := g.flock.MaxSpeed
	pos := components.Position{X: o.X, Y: o.Y}
	vel := components.Velocity{
		X: float32(math.Cos(float64(o.Heading))) * speed,
		Y: float32(math.Sin(float64(o.Heading))) * speed,
	}
	rot := components.Rotation{Heading: o.Heading}
	body := components.Body{Radius: g.geometry.Radius}
	energy := components.Energy{Value: energyValue, Alive: true}
	genome := components.Genome{
		Traits:     o.Traits,
		Generation: o.Generation,
		ParentA:    o.ParentA,
		ParentB:    o.ParentB,
	}
	org := components.Organism{ID: id, BirthTick: g.tick}

	entity := g.birdMapper.NewEntity(&pos, &vel, &rot, &body, &energy, &genome, &org)
	g.lifetimeTracker.Register(id, g.tick, o.Generation, energyValue)
	return entity, id
}

// cleanupDead removes dead birds and returns their IDs in ascending order.
func (g *Game) cleanupDead() []uint32 {
	// First pass: collect dead entities (must complete before modifying)
	var toRemove []ecs.Entity
	var ids []uint32

	query := g.birdFilter.Query()
	for query.Next() {
		_, _, _, _, energy, _, org := query.Get()
		if !energy.Alive {
			toRemove = append(toRemove, query.Entity())
			ids = append(ids, org.ID)
		}
	}

	// Second pass: remove entities (query iteration complete)
	for i, e := range toRemove {
		g.birdMapper.Remove(e)
		if stats := g.lifetimeTracker.Remove(ids[i]); stats != nil {
			g.collector.RecordLifespan(g.tick - stats.BirthTick)
		}
	}

	slices.Sort(ids)
	return ids
}

// applyBirths adds pending offspring in the order they were produced while the
// population is under the cap. The rest are dropped.
func (g *Game) applyBirths() (born []uint32, dropped int) {
	if len(g.pending) == 0 {
		return nil, 0
	}

	alive := g.liveCount()
	limit := g.cfg.Derived.PopulationCap
	offspringEnergy := float32(g.cfg.Energy.Offspring)

	for _, o := range g.pending {
		if alive >= limit {
			dropped++
			continue
		}
		_, id := g.spawnBird(o, offspringEnergy)
		born = append(born, id)
		alive++
		g.reproductionCount++
		g.lifetimeTracker.RecordChild(o.ParentA)
		if o.ParentB != 0 {
			g.lifetimeTracker.RecordChild(o.ParentB)
		}
	}

	if dropped > 0 {
		slog.Debug("offspring dropped at population cap", "tick", g.tick, "dropped", dropped, "cap", limit)
	}
	return born, dropped
}

// liveCount counts birds that are still alive.
func (g *Game) liveCount() int {
	n := 0
	query := g.birdFilter.Query()
	for query.Next() {
		_, _, _, _, energy, _, _ := query.Get()
		if energy.Alive {
			n++
		}
	}
	return n
}

// removeAll deletes every bird from the world.
func (g *Game) removeAll() {
	var all []ecs.Entity
	query := g.birdFilter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		g.birdMapper.Remove(e)
	}
	g.lifetimeTracker.Reset()
}

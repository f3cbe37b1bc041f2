package game

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/traits"
)

// TickResult reports what happened during one tick.
type TickResult struct {
	Tick      int32
	Births    []uint32 // IDs added this tick
	Deaths    []uint32 // IDs removed this tick
	EatenFood int
	Dropped   int // offspring discarded at the population cap
	Stats     telemetry.Stats
	Err       error // unrecoverable; the host should stop
}

// deathCause says why a bird died.
type deathCause uint8

const (
	causeCollision deathCause = iota
	causeStarvation
	causeFault
)

// tickCounts holds the event counters of the running tick.
type tickCounts struct {
	collisions int
	starved    int
	faults     int
	foodEaten  int
}

// offspring is a pending birth produced during the update phase.
type offspring struct {
	X, Y, Heading float32
	Traits        traits.Set
	Generation    uint32
	ParentA       uint32
	ParentB       uint32
}

// snapshotEntry pairs an entity with its state while the snapshot is sorted.
type snapshotEntry struct {
	entity ecs.Entity
	state  systems.AgentState
}

// Tick advances the simulation by one step.
// obstacles and food are read for the whole tick; claimed food has Eaten set.
func (g *Game) Tick(obstacles []systems.Obstacle, food []*systems.Food) TickResult {
	g.tick++
	g.obstacles = obstacles
	g.counts = tickCounts{}
	g.pending = g.pending[:0]
	result := TickResult{Tick: g.tick}

	g.perfCollector.StartTick()
	defer g.perfCollector.EndTick()

	// 1. Snapshot live state and rebuild the spatial index
	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	if err := g.buildSnapshot(); err != nil {
		result.Err = err
		return result
	}

	// 2. Steering intents (read-only, possibly parallel)
	g.perfCollector.StartPhase(telemetry.PhaseSteering)
	g.computeIntents()

	// 3. Sequential per-bird update in ID order
	g.perfCollector.StartPhase(telemetry.PhaseUpdate)
	for i := range g.states {
		if err := g.safeUpdate(i, food); err != nil {
			slog.Warn("agent fault", "id", g.states[i].ID, "tick", g.tick, "error", err)
			g.kill(i, causeFault)
		}
	}
	g.metabolize()
	g.obstacles = nil

	// 4. Remove the dead
	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	result.Deaths = g.cleanupDead()

	// 5. Births up to the cap
	g.perfCollector.StartPhase(telemetry.PhaseBirths)
	result.Births, result.Dropped = g.applyBirths()

	// 6. Stats and telemetry
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	stats := g.computeStats()
	stats.Births = len(result.Births)
	stats.Deaths = len(result.Deaths)
	stats.Collisions = g.counts.collisions
	stats.Starved = g.counts.starved
	stats.Faults = g.counts.faults
	stats.Dropped = result.Dropped
	stats.FoodEaten = g.counts.foodEaten
	g.lastStats = stats
	g.collector.RecordTick(stats)
	g.flushTelemetry()

	result.EatenFood = g.counts.foodEaten
	result.Stats = stats
	return result
}

// buildSnapshot copies every live bird into g.states in ascending ID order,
// clears per-tick flags and rebuilds the grid. Birds with non-finite state are
// killed as faults and left out of the snapshot.
func (g *Game) buildSnapshot() error {
	var entries []snapshotEntry
	var broken []ecs.Entity

	query := g.birdFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, rot, body, energy, genome, org := query.Get()

		if !energy.Alive {
			continue
		}
		org.State = 0

		if !systems.Finite(pos.X, pos.Y, vel.X, vel.Y) {
			broken = append(broken, entity)
			continue
		}

		entries = append(entries, snapshotEntry{
			entity: entity,
			state: systems.AgentState{
				ID:          org.ID,
				X:           pos.X,
				Y:           pos.Y,
				VX:          vel.X,
				VY:          vel.Y,
				Heading:     rot.Heading,
				Radius:      body.Radius,
				Energy:      energy.Value,
				FoodCounter: energy.FoodCounter,
				Traits:      genome.Traits,
			},
		})
	}

	for _, e := range broken {
		org := g.orgMap.Get(e)
		slog.Warn("agent fault", "id", org.ID, "tick", g.tick, "error", "non-finite position or velocity")
		g.energyMap.Get(e).Alive = false
		g.countDeath(causeFault)
	}

	slices.SortFunc(entries, func(a, b snapshotEntry) int {
		return cmp.Compare(a.state.ID, b.state.ID)
	})

	g.entities = g.entities[:0]
	g.states = g.states[:0]
	g.grid.Clear()
	for i, en := range entries {
		g.entities = append(g.entities, en.entity)
		g.states = append(g.states, en.state)
		g.grid.Insert(int32(i), en.state.X, en.state.Y)
	}

	// Slot order doubles as the ID tie-break, so IDs must be unique.
	for i := 1; i < len(g.states); i++ {
		if g.states[i].ID == g.states[i-1].ID {
			return fmt.Errorf("%w: bird %d appears twice", ErrIndexCorrupt, g.states[i].ID)
		}
	}
	if !g.grid.Consistent(len(g.states)) {
		return fmt.Errorf("%w: %d indexed, %d alive", ErrIndexCorrupt, g.grid.Len(), len(g.states))
	}
	return nil
}

// safeUpdate runs updateBird and converts a panic into an error.
func (g *Game) safeUpdate(i int, food []*systems.Food) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update panic: %v", r)
		}
	}()
	return g.updateBird(i, food)
}

// updateBird applies one bird's intent, then feeds, breeds and moves it.
func (g *Game) updateBird(i int, food []*systems.Food) error {
	e := g.entities[i]
	s := &g.states[i]
	in := &g.intents[i]

	if g.beforeUpdate != nil {
		g.beforeUpdate(s.ID)
	}
	if in.Fault != nil {
		return in.Fault
	}

	pos := g.posMap.Get(e)
	vel := g.velMap.Get(e)
	rot := g.rotMap.Get(e)
	body := g.bodyMap.Get(e)
	energy := g.energyMap.Get(e)
	genome := g.genomeMap.Get(e)
	org := g.orgMap.Get(e)

	if !energy.Alive {
		return nil
	}

	if in.Avoid.Ahead {
		org.State = org.State.Add(components.FlagObstacleAhead)
		g.lifetimeTracker.RecordEvasion(org.ID)
	}
	if in.Avoid.Predicted {
		org.State = org.State.Add(components.FlagPredicted)
	}
	if in.Fatal {
		g.kill(i, causeCollision)
		return nil
	}

	fp := &g.flock
	vx, vy := in.VX, in.VY

	// Seek food, unless evading
	if !in.Avoid.Ahead && g.seeksFood(energy.Value) {
		if idx, _ := systems.NearestFood(s.X, s.Y, float32(g.cfg.Food.ScanRadius), food); idx >= 0 {
			f := food[idx]
			dx, dy, w := systems.SeekFood(s.X, s.Y, f.X, f.Y, genome.Traits[traits.FoodAttraction])
			if w > 0 {
				vx, vy = systems.ApplyForce(vx, vy, dx, dy, w, fp.ForceScale, fp.MaxSpeed, rot.Heading)
			}
		}
	}

	// Eat
	if f := systems.ClaimFood(systems.BoxAround(pos.X, pos.Y, body.Radius), food); f != nil {
		if g.breed.Mode == systems.ModeCounter {
			energy.FoodCounter++
		} else {
			energy.Value += f.Energy
		}
		org.State = org.State.Add(components.FlagFed)
		g.counts.foodEaten++
		g.lifetimeTracker.RecordFood(org.ID)
	}

	// Reproduce
	if !org.State.Has(components.FlagBred) && g.breed.Eligible(energy.Value, energy.FoodCounter) {
		g.reproduce(i)
	}

	// Move
	nx, ny, nvx, nvy := g.geometry.Move(pos.X, pos.Y, vx, vy, float32(g.cfg.Physics.GlobalSpeedFactor))
	if !systems.Finite(nx, ny, nvx, nvy) {
		return fmt.Errorf("non-finite motion (%v, %v)", nx, ny)
	}
	pos.X, pos.Y = nx, ny
	vel.X, vel.Y = nvx, nvy
	rot.Heading = systems.Heading(nvx, nvy)
	return nil
}

// metabolize drains every surviving bird after the sweep. Birds below zero starve.
func (g *Game) metabolize() {
	drain := float32(g.cfg.Energy.DrainPerTick)
	for i, e := range g.entities {
		energy := g.energyMap.Get(e)
		if !energy.Alive {
			continue
		}
		if g.breed.Mode == systems.ModeEnergy {
			energy.Value -= drain
			if energy.Value < 0 {
				g.kill(i, causeStarvation)
				continue
			}
		}
		g.lifetimeTracker.UpdateEnergy(g.states[i].ID, energy.Value)
	}
}

// seeksFood reports whether a bird with the given energy looks for food.
// Counter mode birds always do; energy mode birds stop once sated.
func (g *Game) seeksFood(energy float32) bool {
	if g.breed.Mode == systems.ModeCounter {
		return true
	}
	return energy <= float32(g.cfg.Food.SatiationFraction)*g.breed.Threshold
}

// reproduce picks a mate for slot i, charges both parents and queues an offspring.
func (g *Game) reproduce(i int) {
	mate := g.findMate(i)
	if mate < 0 && g.breed.Mode == systems.ModeCounter && g.breed.CounterRequiresMate {
		return
	}

	parent := g.entities[i]
	parentGenome := g.genomeMap.Get(parent)
	parentOrg := g.orgMap.Get(parent)
	g.payForOffspring(parent)

	child := offspring{
		Generation: parentGenome.Generation + 1,
		ParentA:    parentOrg.ID,
	}

	var mateTraits *traits.Set
	if mate >= 0 {
		me := g.entities[mate]
		mateGenome := g.genomeMap.Get(me)
		g.payForOffspring(me)
		mateTraits = &mateGenome.Traits
		child.ParentB = g.states[mate].ID
		child.Generation = max(parentGenome.Generation, mateGenome.Generation) + 1
	}

	child.Traits = g.breed.OffspringTraits(parentGenome.Traits, mateTraits, g.rng)
	pos := g.posMap.Get(parent)
	child.X, child.Y, child.Heading = g.breed.OffspringPlacement(pos.X, pos.Y, g.geometry, g.rng)
	g.pending = append(g.pending, child)
}

// payForOffspring charges a parent and marks it as bred for this tick.
func (g *Game) payForOffspring(e ecs.Entity) {
	energy := g.energyMap.Get(e)
	if g.breed.Mode == systems.ModeCounter {
		energy.FoodCounter = 0
	} else {
		energy.Value -= g.breed.Cost
	}
	org := g.orgMap.Get(e)
	org.State = org.State.Add(components.FlagBred)
}

// findMate returns the lowest eligible slot near slot i, or -1.
// Energy mode searches the mating radius; counter mode needs overlapping boxes.
func (g *Game) findMate(i int) int32 {
	s := &g.states[i]

	if g.breed.Mode == systems.ModeCounter {
		box := s.Box()
		g.cells = g.grid.QueryNeighbors(g.cells[:0], s.X, s.Y)
		g.mates = g.mates[:0]
		for _, c := range g.cells {
			if int(c) != i && g.states[c].Box().Overlaps(box) {
				g.mates = append(g.mates, systems.Neighbor{Slot: c})
			}
		}
	} else {
		g.mates = g.grid.QueryRadius(g.mates[:0], s.X, s.Y, g.breed.MatingRadius, int32(i), g.states)
	}

	return systems.PickMate(g.mates, g.mateEligible)
}

// mateEligible checks the live state of a candidate mate.
func (g *Game) mateEligible(slot int32) bool {
	e := g.entities[slot]
	energy := g.energyMap.Get(e)
	if !energy.Alive {
		return false
	}
	if g.orgMap.Get(e).State.Has(components.FlagBred) {
		return false
	}
	return g.breed.Eligible(energy.Value, energy.FoodCounter)
}

// kill marks slot i dead and counts the cause. Killing a dead bird does nothing.
func (g *Game) kill(i int, cause deathCause) {
	energy := g.energyMap.Get(g.entities[i])
	if !energy.Alive {
		return
	}
	energy.Alive = false
	g.countDeath(cause)
}

// countDeath updates tick and cumulative counters. Faults count as collisions.
func (g *Game) countDeath(cause deathCause) {
	switch cause {
	case causeStarvation:
		g.counts.starved++
	case causeFault:
		g.counts.faults++
		g.counts.collisions++
		g.collisionCount++
	default:
		g.counts.collisions++
		g.collisionCount++
	}
}

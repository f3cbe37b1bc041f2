package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/flock/traits"
)

// ReproductionMode selects what a bird spends to reproduce.
type ReproductionMode uint8

const (
	ModeEnergy  ReproductionMode = iota // spend energy, optional mate with crossover
	ModeCounter                         // spend eaten-food count, mate by contact
)

// ParseReproductionMode converts a config name to a mode.
func ParseReproductionMode(name string) (ReproductionMode, error) {
	switch name {
	case "energy":
		return ModeEnergy, nil
	case "counter":
		return ModeCounter, nil
	default:
		return 0, fmt.Errorf("unknown reproduction mode %q", name)
	}
}

func (m ReproductionMode) String() string {
	if m == ModeCounter {
		return "counter"
	}
	return "energy"
}

// BreedParams holds reproduction constants for one tick.
type BreedParams struct {
	Mode                 ReproductionMode
	Threshold            float32 // energy units or food count, per Mode
	Cost                 float32 // energy mode only
	MatingRadius         float32
	CrossoverProbability float32
	MutationRate         float32
	CounterRequiresMate  bool
	SpawnJitter          float32
	Bounds               traits.Bounds
}

// Eligible reports whether a bird with the given live state may reproduce.
// Energy mode never lets a payment take energy below zero.
func (p BreedParams) Eligible(energy float32, foodCounter int32) bool {
	switch p.Mode {
	case ModeCounter:
		return float32(foodCounter) >= p.Threshold
	default:
		return energy >= p.Threshold && energy-p.Cost >= 0
	}
}

// PickMate returns the lowest slot among candidates accepted by eligible, or -1.
// Slots follow ascending bird ID.
func PickMate(candidates []Neighbor, eligible func(slot int32) bool) int32 {
	best := int32(-1)
	for _, c := range candidates {
		if best >= 0 && c.Slot >= best {
			continue
		}
		if eligible(c.Slot) {
			best = c.Slot
		}
	}
	return best
}

// OffspringTraits builds a child's traits from parent and an optional mate, then mutates them.
// Counter mode averages both parents and energy mode crosses them over. A lone parent is cloned.
func (p BreedParams) OffspringTraits(parent traits.Set, mate *traits.Set, rng *rand.Rand) traits.Set {
	child := parent
	if mate != nil {
		if p.Mode == ModeCounter {
			child = traits.Average(parent, *mate)
		} else {
			child = traits.Crossover(parent, *mate, p.CrossoverProbability, rng)
		}
	}
	return traits.Mutate(child, p.MutationRate, p.Bounds, rng)
}

// OffspringPlacement returns a spawn position near (x, y), kept inside the world,
// and a uniformly random heading.
func (p BreedParams) OffspringPlacement(x, y float32, w World, rng *rand.Rand) (cx, cy, heading float32) {
	cx = x + (rng.Float32()*2-1)*p.SpawnJitter
	cy = y + (rng.Float32()*2-1)*p.SpawnJitter
	cx, cy = w.Contain(cx, cy)
	heading = rng.Float32() * 2 * math.Pi
	return cx, cy, heading
}

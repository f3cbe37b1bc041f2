// Package traits defines the heritable behaviour parameters carried by every bird.
package traits

import "math/rand"

// Kind identifies one heritable trait.
type Kind int

const (
	Cohesion          Kind = iota // pull toward the local centre of mass
	Alignment                     // match neighbour headings
	Separation                    // push away from crowding neighbours
	Avoidance                     // obstacle evasion strength
	FoodAttraction                // pull toward nearby food
	AvoidanceDistance             // scales how far ahead obstacles are noticed

	Count // number of traits
)

var kindNames = [Count]string{
	"cohesion",
	"alignment",
	"separation",
	"avoidance",
	"food_attraction",
	"avoidance_distance",
}

// String returns the snake_case name used in config and telemetry.
func (k Kind) String() string {
	if k < 0 || k >= Count {
		return "unknown"
	}
	return kindNames[k]
}

// All returns every trait kind in declaration order.
func All() [Count]Kind {
	var ks [Count]Kind
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// Set is one bird's trait vector, indexed by Kind.
type Set [Count]float32

// Range is the inclusive [Min, Max] clamp for one trait.
type Range struct {
	Min, Max float32
}

// Clamp limits v to the range.
func (r Range) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float32) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds holds the clamp for every trait.
type Bounds [Count]Range

// Clamp returns s with every trait clamped to its range.
func (b Bounds) Clamp(s Set) Set {
	for i := range s {
		s[i] = b[i].Clamp(s[i])
	}
	return s
}

// Contains reports whether every trait of s is within bounds.
func (b Bounds) Contains(s Set) bool {
	for i := range s {
		if !b[i].Contains(s[i]) {
			return false
		}
	}
	return true
}

// Average returns the per-trait mean of two parents.
func Average(a, b Set) Set {
	var out Set
	for i := range out {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}

// Crossover picks each trait from b with probability p, otherwise from a.
func Crossover(a, b Set, p float32, rng *rand.Rand) Set {
	out := a
	for i := range out {
		if rng.Float32() < p {
			out[i] = b[i]
		}
	}
	return out
}

// Mutate perturbs every trait by ±U(0, rate) of its current value and clamps the result.
// Two random draws are taken per trait, in trait order.
func Mutate(s Set, rate float32, bounds Bounds, rng *rand.Rand) Set {
	for i := range s {
		delta := rng.Float32() * rate * s[i]
		if rng.Intn(2) == 0 {
			delta = -delta
		}
		s[i] = bounds[i].Clamp(s[i] + delta)
	}
	return s
}

// Jittered returns mean ± U(-jitter, jitter) per trait, clamped to bounds.
func Jittered(mean, jitter Set, bounds Bounds, rng *rand.Rand) Set {
	var out Set
	for i := range out {
		out[i] = mean[i] + (rng.Float32()*2-1)*jitter[i]
	}
	return bounds.Clamp(out)
}

// Color returns an RGB tint from the three flocking traits:
// cohesion drives red, alignment green and separation blue.
func Color(s Set, bounds Bounds) (r, g, b uint8) {
	return channel(s[Cohesion], bounds[Cohesion]),
		channel(s[Alignment], bounds[Alignment]),
		channel(s[Separation], bounds[Separation])
}

func channel(v float32, r Range) uint8 {
	span := r.Max - r.Min
	if span <= 0 {
		return 160
	}
	return uint8(80 + 175*clamp01((v-r.Min)/span))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

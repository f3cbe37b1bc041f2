// Package components defines ECS components for the simulation.
package components

// Flags records per-tick behaviour state of a bird.
type Flags uint8

const (
	FlagObstacleAhead Flags = 1 << iota // avoidance took over steering this tick
	FlagPredicted                       // predictive avoidance expects a collision
	FlagFed                             // ate food this tick
	FlagBred                            // produced or fathered an offspring this tick
)

// Has checks if the set contains all bits of other.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// Add adds bits to the set.
func (f Flags) Add(other Flags) Flags {
	return f | other
}

// Remove removes bits from the set.
func (f Flags) Remove(other Flags) Flags {
	return f &^ other
}

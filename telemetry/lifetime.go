package telemetry

// LifetimeStats tracks per-bird statistics over its lifetime.
type LifetimeStats struct {
	BirthTick  int32   `json:"birth_tick" msgpack:"birth_tick"`
	Generation uint32  `json:"generation" msgpack:"generation"`
	Children   int     `json:"children" msgpack:"children"`
	FoodEaten  int     `json:"food_eaten" msgpack:"food_eaten"`
	Evasions   int     `json:"evasions" msgpack:"evasions"` // ticks spent evading obstacles
	PeakEnergy float32 `json:"peak_energy" msgpack:"peak_energy"`
}

// LifetimeTracker manages per-bird lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new bird.
func (lt *LifetimeTracker) Register(id uint32, birthTick int32, generation uint32, energy float32) {
	lt.stats[id] = &LifetimeStats{
		BirthTick:  birthTick,
		Generation: generation,
		PeakEnergy: energy,
	}
}

// Restore installs previously saved stats for a bird.
func (lt *LifetimeTracker) Restore(id uint32, s LifetimeStats) {
	lt.stats[id] = &s
}

// Get returns the lifetime stats for a bird, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes a bird's stats and returns them (for logging).
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// RecordFood counts one eaten item.
func (lt *LifetimeTracker) RecordFood(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.FoodEaten++
	}
}

// RecordEvasion counts one tick of obstacle evasion.
func (lt *LifetimeTracker) RecordEvasion(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Evasions++
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float32) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked birds.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// Reset drops every tracked bird.
func (lt *LifetimeTracker) Reset() {
	clear(lt.stats)
}

package telemetry

// Collector accumulates per-tick counters into windows and produces WindowStats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32

	// Event counters for current window
	births     int
	deaths     int
	collisions int
	starved    int
	faults     int
	dropped    int
	foodEaten  int
	lifespans  []float64
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// RecordTick adds the per-tick event counts of s to the current window.
func (c *Collector) RecordTick(s Stats) {
	c.births += s.Births
	c.deaths += s.Deaths
	c.collisions += s.Collisions
	c.starved += s.Starved
	c.faults += s.Faults
	c.dropped += s.Dropped
	c.foodEaten += s.FoodEaten
}

// RecordLifespan records how many ticks a dead bird lived.
func (c *Collector) RecordLifespan(ticks int32) {
	c.lifespans = append(c.lifespans, float64(ticks))
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// last is the most recent tick summary and energies the live energy values.
func (c *Collector) Flush(currentTick int32, last Stats, energies []float64) WindowStats {
	energyMean, p10, p50, p90 := ComputeEnergyStats(energies)

	var lifespan float64
	for _, l := range c.lifespans {
		lifespan += l
	}
	if len(c.lifespans) > 0 {
		lifespan /= float64(len(c.lifespans))
	}

	stds := [...]float64{
		last.StdCohesion, last.StdAlignment, last.StdSeparation,
		last.StdAvoidance, last.StdFoodAttraction, last.StdAvoidanceDistance,
	}
	var stdMean float64
	for _, s := range stds {
		stdMean += s
	}
	stdMean /= float64(len(stds))

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Count:         last.Count,
		MaxGeneration: last.MaxGeneration,

		Births:     c.births,
		Deaths:     c.deaths,
		Collisions: c.collisions,
		Starved:    c.starved,
		Faults:     c.faults,
		Dropped:    c.dropped,
		FoodEaten:  c.foodEaten,

		MeanLifespan: lifespan,

		EnergyMean: energyMean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		CohesionMean:          last.AvgCohesion,
		AlignmentMean:         last.AvgAlignment,
		SeparationMean:        last.AvgSeparation,
		AvoidanceMean:         last.AvgAvoidance,
		FoodAttractionMean:    last.AvgFoodAttraction,
		AvoidanceDistanceMean: last.AvgAvoidanceDistance,
		TraitStdMean:          stdMean,
	}

	c.windowStartTick = currentTick
	c.births, c.deaths, c.collisions = 0, 0, 0
	c.starved, c.faults, c.dropped, c.foodEaten = 0, 0, 0, 0
	c.lifespans = c.lifespans[:0]

	return stats
}

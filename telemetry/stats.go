package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/traits"
)

// Stats is the per-tick population summary handed to renderers, loggers and plots.
// Collision and reproduction counts are cumulative; the rest describe one tick.
type Stats struct {
	Tick  int32 `csv:"tick" json:"tick"`
	Count int   `csv:"count" json:"count"`

	AvgCohesion          float64 `csv:"avg_cohesion" json:"avg_cohesion"`
	AvgAlignment         float64 `csv:"avg_alignment" json:"avg_alignment"`
	AvgSeparation        float64 `csv:"avg_separation" json:"avg_separation"`
	AvgAvoidance         float64 `csv:"avg_avoidance" json:"avg_avoidance"`
	AvgFoodAttraction    float64 `csv:"avg_food_attraction" json:"avg_food_attraction"`
	AvgAvoidanceDistance float64 `csv:"avg_avoidance_distance" json:"avg_avoidance_distance"`

	StdCohesion          float64 `csv:"std_cohesion" json:"std_cohesion"`
	StdAlignment         float64 `csv:"std_alignment" json:"std_alignment"`
	StdSeparation        float64 `csv:"std_separation" json:"std_separation"`
	StdAvoidance         float64 `csv:"std_avoidance" json:"std_avoidance"`
	StdFoodAttraction    float64 `csv:"std_food_attraction" json:"std_food_attraction"`
	StdAvoidanceDistance float64 `csv:"std_avoidance_distance" json:"std_avoidance_distance"`

	AvgEnergy      float64 `csv:"avg_energy" json:"avg_energy"`
	AvgFoodCounter float64 `csv:"avg_food_counter" json:"avg_food_counter"`
	MaxGeneration  uint32  `csv:"max_generation" json:"max_generation"`

	CollisionCount    int `csv:"collisions_total" json:"collision_count"`
	ReproductionCount int `csv:"reproductions_total" json:"reproduction_count"`

	// This tick only
	Births     int `csv:"births" json:"births"`
	Deaths     int `csv:"deaths" json:"deaths"`
	Collisions int `csv:"collisions" json:"collisions"`
	Starved    int `csv:"starved" json:"starved"`
	Faults     int `csv:"faults" json:"faults"`
	Dropped    int `csv:"dropped" json:"dropped"`
	FoodEaten  int `csv:"food_eaten" json:"food_eaten"`
}

// TraitMeans returns the average trait vector.
func (s *Stats) TraitMeans() [traits.Count]float64 {
	return [traits.Count]float64{
		traits.Cohesion:          s.AvgCohesion,
		traits.Alignment:         s.AvgAlignment,
		traits.Separation:        s.AvgSeparation,
		traits.Avoidance:         s.AvgAvoidance,
		traits.FoodAttraction:    s.AvgFoodAttraction,
		traits.AvoidanceDistance: s.AvgAvoidanceDistance,
	}
}

// SetTraitStats stores per-trait means and standard deviations.
func (s *Stats) SetTraitStats(mean, std [traits.Count]float64) {
	s.AvgCohesion, s.StdCohesion = mean[traits.Cohesion], std[traits.Cohesion]
	s.AvgAlignment, s.StdAlignment = mean[traits.Alignment], std[traits.Alignment]
	s.AvgSeparation, s.StdSeparation = mean[traits.Separation], std[traits.Separation]
	s.AvgAvoidance, s.StdAvoidance = mean[traits.Avoidance], std[traits.Avoidance]
	s.AvgFoodAttraction, s.StdFoodAttraction = mean[traits.FoodAttraction], std[traits.FoodAttraction]
	s.AvgAvoidanceDistance, s.StdAvoidanceDistance = mean[traits.AvoidanceDistance], std[traits.AvoidanceDistance]
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", int(s.Tick)),
		slog.Int("count", s.Count),
		slog.Float64("avg_cohesion", s.AvgCohesion),
		slog.Float64("avg_alignment", s.AvgAlignment),
		slog.Float64("avg_separation", s.AvgSeparation),
		slog.Float64("avg_avoidance", s.AvgAvoidance),
		slog.Float64("avg_food_attraction", s.AvgFoodAttraction),
		slog.Float64("avg_energy", s.AvgEnergy),
		slog.Int("collisions_total", s.CollisionCount),
		slog.Int("reproductions_total", s.ReproductionCount),
	)
}

// ComputeTraitStats returns the mean and standard deviation of every trait.
// Fewer than two samples give a zero deviation.
func ComputeTraitStats(sets []traits.Set) (mean, std [traits.Count]float64) {
	n := len(sets)
	if n == 0 {
		return mean, std
	}
	column := make([]float64, n)
	for k := range mean {
		for i := range sets {
			column[i] = float64(sets[i][k])
		}
		if n == 1 {
			mean[k] = column[0]
			continue
		}
		mean[k], std[k] = stat.MeanStdDev(column, nil)
	}
	return mean, std
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation between closest ranks
	idx := p * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population at window end
	Count         int    `csv:"count"`
	MaxGeneration uint32 `csv:"max_generation"`

	// Events during window
	Births     int `csv:"births"`
	Deaths     int `csv:"deaths"`
	Collisions int `csv:"collisions"`
	Starved    int `csv:"starved"`
	Faults     int `csv:"faults"`
	Dropped    int `csv:"dropped"`
	FoodEaten  int `csv:"food_eaten"`

	// Lifespan in ticks of birds that died during the window
	MeanLifespan float64 `csv:"mean_lifespan"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Trait distribution (sampled at window end)
	CohesionMean          float64 `csv:"cohesion_mean"`
	AlignmentMean         float64 `csv:"alignment_mean"`
	SeparationMean        float64 `csv:"separation_mean"`
	AvoidanceMean         float64 `csv:"avoidance_mean"`
	FoodAttractionMean    float64 `csv:"food_attraction_mean"`
	AvoidanceDistanceMean float64 `csv:"avoidance_distance_mean"`
	TraitStdMean          float64 `csv:"trait_std_mean"` // mean of per-trait std, a diversity measure
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("count", s.Count),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("collisions", s.Collisions),
		slog.Int("starved", s.Starved),
		slog.Int("dropped", s.Dropped),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("mean_lifespan", s.MeanLifespan),
		slog.Float64("trait_std_mean", s.TraitStdMean),
		slog.Int("max_generation", int(s.MaxGeneration)),
	)
}

// LogStats logs the window statistics using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

package config

// Tuning is the subset of parameters that may change while the simulation runs.
// Changes apply from the next tick.
type Tuning struct {
	GlobalSpeedFactor     float64 `json:"global_speed_factor" yaml:"global_speed_factor"`
	NumNeighbors          int     `json:"num_neighbors" yaml:"num_neighbors"`
	ReproductionThreshold float64 `json:"reproduction_threshold" yaml:"reproduction_threshold"`
	MutationRate          float64 `json:"mutation_rate" yaml:"mutation_rate"`
	SeparationDistance    float64 `json:"separation_distance" yaml:"separation_distance"`
	AvoidanceScale        float64 `json:"avoidance_scale" yaml:"avoidance_scale"`
	CohesionScale         float64 `json:"cohesion_scale" yaml:"cohesion_scale"`
	AlignmentScale        float64 `json:"alignment_scale" yaml:"alignment_scale"`
	SeparationScale       float64 `json:"separation_scale" yaml:"separation_scale"`
}

// Tuning returns the current live-tunable parameters.
func (c *Config) Tuning() Tuning {
	return Tuning{
		GlobalSpeedFactor:     c.Physics.GlobalSpeedFactor,
		NumNeighbors:          c.Flocking.NumNeighbors,
		ReproductionThreshold: c.Reproduction.Threshold,
		MutationRate:          c.Mutation.Rate,
		SeparationDistance:    c.Flocking.SeparationDistance,
		AvoidanceScale:        c.Avoidance.StrengthScale,
		CohesionScale:         c.Flocking.CohesionScale,
		AlignmentScale:        c.Flocking.AlignmentScale,
		SeparationScale:       c.Flocking.SeparationScale,
	}
}

// ApplyTuning validates t against the rest of the config and, if valid, stores it.
// On error the config is left unchanged.
func (c *Config) ApplyTuning(t Tuning) error {
	next := c.Clone()
	next.setTuning(t)
	if err := next.Validate(); err != nil {
		return err
	}
	c.setTuning(t)
	return nil
}

func (c *Config) setTuning(t Tuning) {
	c.Physics.GlobalSpeedFactor = t.GlobalSpeedFactor
	c.Flocking.NumNeighbors = t.NumNeighbors
	c.Reproduction.Threshold = t.ReproductionThreshold
	c.Mutation.Rate = t.MutationRate
	c.Flocking.SeparationDistance = t.SeparationDistance
	c.Avoidance.StrengthScale = t.AvoidanceScale
	c.Flocking.CohesionScale = t.CohesionScale
	c.Flocking.AlignmentScale = t.AlignmentScale
	c.Flocking.SeparationScale = t.SeparationScale
}

// TuningLimit describes the slider range for one tunable.
type TuningLimit struct {
	Name     string
	Min, Max float64
}

// TuningLimits lists slider ranges in display order.
var TuningLimits = []TuningLimit{
	{Name: "speed", Min: 0.1, Max: 5},
	{Name: "neighbors", Min: 1, Max: 20},
	{Name: "repro threshold", Min: 1, Max: 300},
	{Name: "mutation", Min: 0, Max: 0.5},
	{Name: "separation", Min: 5, Max: 100},
	{Name: "avoidance", Min: 0, Max: 3},
	{Name: "cohesion", Min: 0, Max: 3},
	{Name: "alignment", Min: 0, Max: 3},
	{Name: "separation str", Min: 0, Max: 3},
}

// Values returns t as a slice ordered like TuningLimits.
func (t Tuning) Values() []float64 {
	return []float64{
		t.GlobalSpeedFactor,
		float64(t.NumNeighbors),
		t.ReproductionThreshold,
		t.MutationRate,
		t.SeparationDistance,
		t.AvoidanceScale,
		t.CohesionScale,
		t.AlignmentScale,
		t.SeparationScale,
	}
}

// TuningFromValues is the inverse of Tuning.Values.
func TuningFromValues(v []float64) Tuning {
	return Tuning{
		GlobalSpeedFactor:     v[0],
		NumNeighbors:          int(v[1] + 0.5),
		ReproductionThreshold: v[2],
		MutationRate:          v[3],
		SeparationDistance:    v[4],
		AvoidanceScale:        v[5],
		CohesionScale:         v[6],
		AlignmentScale:        v[7],
		SeparationScale:       v[8],
	}
}

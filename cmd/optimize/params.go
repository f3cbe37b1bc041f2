package main

import (
	"github.com/pthm-cable/flock/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the reproduction and energy parameters searched by the tuner.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "repro_threshold", Path: "reproduction.threshold", Min: 20, Max: 300},
			{Name: "repro_cost", Path: "reproduction.cost", Min: 0, Max: 150},
			{Name: "mutation_rate", Path: "mutation.rate", Min: 0, Max: 0.3},
			{Name: "crossover_prob", Path: "reproduction.crossover_probability", Min: 0, Max: 1},
			{Name: "food_value", Path: "food.energy_value", Min: 5, Max: 100},
			{Name: "drain", Path: "energy.drain_per_tick", Min: 0, Max: 0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Reproduction.Threshold = c[0]
	cfg.Reproduction.Cost = c[1]
	cfg.Mutation.Rate = c[2]
	cfg.Reproduction.CrossoverProbability = c[3]
	cfg.Food.EnergyValue = c[4]
	cfg.Energy.DrainPerTick = c[5]
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Reproduction.Threshold,
		cfg.Reproduction.Cost,
		cfg.Mutation.Rate,
		cfg.Reproduction.CrossoverProbability,
		cfg.Food.EnergyValue,
		cfg.Energy.DrainPerTick,
	}
}

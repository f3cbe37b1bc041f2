package main

import (
	"log/slog"
	"sync"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

// extinctionPenalty is added per tick left unplayed after the population dies out,
// on top of the full deviation for those ticks.
const extinctionPenalty = 1.0

// invalidFitness is returned for parameter sets the config rejects.
const invalidFitness = 1e6

// FitnessEvaluator runs headless sessions and scores how well the population
// holds a target size.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int32
	target     float64
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastExtinct int // seeds that died out in the most recent evaluation
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int32, target int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		target:     float64(target),
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastExtinct returns how many seeds went extinct in the most recent evaluation.
func (fe *FitnessEvaluator) LastExtinct() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastExtinct
}

// runResult holds the outcome of one seed.
type runResult struct {
	score   float64 // mean squared relative deviation, including the extinction penalty
	extinct bool
	err     error
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Every seed runs in its own goroutine.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		slog.Debug("rejected parameters", "error", err)
		return invalidFitness
	}

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fe.run(cfg, seed)
		}()
	}
	wg.Wait()

	var total float64
	extinct := 0
	for _, r := range results {
		if r.err != nil {
			slog.Warn("evaluation failed", "error", r.err)
			return invalidFitness
		}
		total += r.score
		if r.extinct {
			extinct++
		}
	}

	fe.mu.Lock()
	fe.lastExtinct = extinct
	fe.mu.Unlock()

	return total / float64(len(fe.seeds))
}

// run plays one seed and accumulates the squared deviation of the population
// from the target, relative to the target.
func (fe *FitnessEvaluator) run(cfg *config.Config, seed int64) runResult {
	s, err := game.NewSession(cfg, game.Options{Seed: seed})
	if err != nil {
		return runResult{err: err}
	}
	defer s.Close()

	var sum float64
	for tick := int32(1); tick <= fe.ticks; tick++ {
		res := s.Step()
		if res.Err != nil {
			return runResult{err: res.Err}
		}
		count := float64(s.Game.Count())
		sum += deviation(count, fe.target)
		if count == 0 {
			remaining := float64(fe.ticks - tick)
			sum += remaining * (1 + extinctionPenalty)
			return runResult{score: sum / float64(fe.ticks), extinct: true}
		}
	}
	return runResult{score: sum / float64(fe.ticks)}
}

// deviation is the squared relative distance of count from target.
func deviation(count, target float64) float64 {
	if target <= 0 {
		return count * count
	}
	d := (count - target) / target
	return d * d
}

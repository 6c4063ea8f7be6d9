package main

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/game"
)

// extinctionPenalty is added to the error of every trial that died out.
const extinctionPenalty = 1.0

// Objective runs batches of trials and scores how far they land from the
// target average population. Lower is better.
type Objective struct {
	params  *ParamVector
	base    game.TrialConfig
	target  float64
	trials  int
	seed    int64
	workers int

	mu       sync.Mutex
	lastMean float64
	lastExt  int
}

// NewObjective creates an objective over base, varying the habitat capacity.
func NewObjective(params *ParamVector, base game.TrialConfig, target float64, trials int, seed int64, workers int) *Objective {
	return &Objective{
		params:  params,
		base:    base,
		target:  target,
		trials:  trials,
		seed:    seed,
		workers: workers,
	}
}

// Last returns the mean average population and extinction count of the most
// recent evaluation.
func (o *Objective) Last() (mean float64, extinctions int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastMean, o.lastExt
}

// Evaluate scores raw parameter values. The same seed is used for every
// evaluation so differences come from the parameters alone.
func (o *Objective) Evaluate(ctx context.Context, raw []float64) (float64, error) {
	v := o.params.Clamp(raw)

	habitat := *o.base.Habitat
	habitat.MonthlyFood = int(v[0])
	habitat.MonthlyWater = int(v[1])
	cfg := o.base
	cfg.Habitat = &habitat

	results, err := game.RunTrials(ctx, o.trials, cfg, game.Options{Seed: o.seed, Workers: o.workers})
	if err != nil {
		return math.Inf(1), err
	}

	averages := make([]float64, len(results))
	errs := make([]float64, len(results))
	extinctions := 0
	for i, m := range results {
		avg := m.AveragePopulation()
		if math.IsNaN(avg) {
			avg = 0
		}
		averages[i] = avg
		rel := (avg - o.target) / o.target
		errs[i] = rel * rel
		if _, extinct := m.ExtinctAt(); extinct {
			errs[i] += extinctionPenalty
			extinctions++
		}
	}

	o.mu.Lock()
	o.lastMean = stat.Mean(averages, nil)
	o.lastExt = extinctions
	o.mu.Unlock()

	return stat.Mean(errs, nil), nil
}

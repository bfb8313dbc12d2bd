package main

import (
	"github.com/slava-sh/agarcup/arena"
	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/strategy"
)

// FitnessEvaluator scores a parameter candidate by multi-seed arena
// rollouts; the fitness is the negated mean final mass (the optimizer
// minimizes).
type FitnessEvaluator struct {
	params  *ParamVector
	ticks   int
	pellets int
	botMass float64
	seeds   []int64
	base    *config.Config

	evals int
}

// NewFitnessEvaluator creates an evaluator over the given rollout seeds.
func NewFitnessEvaluator(params *ParamVector, ticks, pellets int, botMass float64, seeds []int64, base *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:  params,
		ticks:   ticks,
		pellets: pellets,
		botMass: botMass,
		seeds:   seeds,
		base:    base,
	}
}

// Evaluate runs one rollout per seed with the candidate parameters applied
// and returns the negated mean final mass.
func (e *FitnessEvaluator) Evaluate(raw []float64) float64 {
	cfg := e.params.Apply(e.base, raw)
	e.evals++

	total := 0.0
	for _, seed := range e.seeds {
		planner := strategy.New(cfg, seed, nil)
		a := arena.New(cfg, e.pellets, e.botMass, seed)
		total += a.Run(planner, e.ticks)
	}
	return -total / float64(len(e.seeds))
}

// Evals returns how many evaluations ran.
func (e *FitnessEvaluator) Evals() int {
	return e.evals
}

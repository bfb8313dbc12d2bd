// Package main provides CMA-ES tuning of planner weights against sparring
// arena rollouts.
package main

import (
	"github.com/slava-sh/agarcup/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable planner parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "speed_reward", Min: 0.0, Max: 1.0, Default: 0.1},
			{Name: "safety_margin_penalty", Min: -20.0, Max: 0.0, Default: -3.0},
			{Name: "safety_margin_factor", Min: 1.0, Max: 5.0, Default: 2.5},
			{Name: "skip_distance", Min: 5.0, Max: 60.0, Default: 20.0},
			{Name: "expansions_per_tick", Min: 4, Max: 64, Default: 20},
			{Name: "split_interval", Min: 10, Max: 300, Default: 50},
		},
	}
}

// Dim returns the number of parameters.
func (p *ParamVector) Dim() int {
	return len(p.Specs)
}

// DefaultVector returns the raw default values.
func (p *ParamVector) DefaultVector() []float64 {
	raw := make([]float64, p.Dim())
	for i, spec := range p.Specs {
		raw[i] = spec.Default
	}
	return raw
}

// Normalize maps raw parameter values into [0, 1] by their bounds.
func (p *ParamVector) Normalize(raw []float64) []float64 {
	x := make([]float64, p.Dim())
	for i, spec := range p.Specs {
		x[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return x
}

// Denormalize maps [0, 1] values back into raw parameter space, clamping to
// the bounds.
func (p *ParamVector) Denormalize(x []float64) []float64 {
	raw := make([]float64, p.Dim())
	for i, spec := range p.Specs {
		v := spec.Min + x[i]*(spec.Max-spec.Min)
		if v < spec.Min {
			v = spec.Min
		}
		if v > spec.Max {
			v = spec.Max
		}
		raw[i] = v
	}
	return raw
}

// Apply writes raw parameter values into a copy of the base config.
func (p *ParamVector) Apply(base *config.Config, raw []float64) *config.Config {
	cfg := *base
	cfg.Planner.SpeedReward = raw[0]
	cfg.Planner.SafetyMarginPenalty = raw[1]
	cfg.Planner.SafetyMarginFactor = raw[2]
	cfg.Planner.SkipDistance = raw[3]
	cfg.Planner.ExpansionsPerTick = int(raw[4])
	cfg.Planner.SplitInterval = int(raw[5])
	return &cfg
}

package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/snaphome/config"
	"github.com/pthm-cable/snaphome/field"
	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/homing"
	"github.com/pthm-cable/snaphome/world"
)

// failurePenalty is the fitness of a weight pair that cannot produce a
// field, worse than any angular error.
const failurePenalty = 2 * math.Pi

// FitnessEvaluator scores homing weights by the mean angular error of the
// vector field they produce.
type FitnessEvaluator struct {
	params  *ParamVector
	world   *world.World
	homes   []geom.IVec
	base    homing.Params
	options field.Options

	mu          sync.Mutex
	lastSummary field.Summary
}

// NewFitnessEvaluator creates an evaluator over w. Every weight pair is
// scored as the mean over all homes.
func NewFitnessEvaluator(params *ParamVector, w *world.World, homes []geom.IVec, cfg *config.Config, opts field.Options) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:  params,
		world:   w,
		homes:   homes,
		base:    homing.ParamsFromConfig(cfg.Homing),
		options: opts,
	}
}

// LastSummary returns the field summary of the most recent evaluation's
// first home.
func (fe *FitnessEvaluator) LastSummary() field.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Fitness is the mean angular error in radians.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	clamped := fe.params.Clamp(x)
	p := fe.base
	p.TurningWeight = clamped[0]
	p.PositioningWeight = clamped[1]

	occluders := fe.world.Occluders()
	var total float64
	for i, home := range fe.homes {
		bee, err := homing.NewBee(home, occluders, p)
		if err != nil {
			return failurePenalty
		}
		f, err := field.Generate(bee, fe.world, fe.options)
		if err != nil {
			return failurePenalty
		}
		if i == 0 {
			fe.mu.Lock()
			fe.lastSummary = f.Summary
			fe.mu.Unlock()
		}
		total += score(f.Summary)
	}
	return total / float64(len(fe.homes))
}

// score is the mean angular error, with cells the engine could not steer
// from counted at the penalty.
func score(s field.Summary) float64 {
	n := s.Measured + s.Failed
	if n == 0 {
		return failurePenalty
	}
	sum := float64(s.Failed) * failurePenalty
	if s.Measured > 0 {
		sum += s.MeanAngularError * float64(s.Measured)
	}
	return sum / float64(n)
}

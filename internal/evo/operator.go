package evo

import (
	"fmt"
	"math"
	"math/rand"
)

// Mutation perturbs a genome. Implementations return a new slice and leave
// genes untouched.
type Mutation interface {
	Name() string
	Mutate(rng *rand.Rand, genes []float64) []float64
}

// SubstituteMutation replaces each gene, with probability Rate, by a fresh
// uniform value in [0,1).
type SubstituteMutation struct {
	Rate float64
}

func (SubstituteMutation) Name() string {
	return "substitute"
}

func (m SubstituteMutation) Mutate(rng *rand.Rand, genes []float64) []float64 {
	out := append([]float64(nil), genes...)
	for i := range out {
		if rng.Float64() < m.Rate {
			out[i] = rng.Float64()
		}
	}
	return out
}

// GaussianMutation nudges each gene, with probability Rate, by N(0, Sigma) and
// clamps the result back into [0,1).
type GaussianMutation struct {
	Rate  float64
	Sigma float64
}

func (GaussianMutation) Name() string {
	return "gaussian"
}

func (m GaussianMutation) Mutate(rng *rand.Rand, genes []float64) []float64 {
	sigma := m.Sigma
	if sigma <= 0 {
		sigma = 0.1
	}
	out := append([]float64(nil), genes...)
	for i := range out {
		if rng.Float64() < m.Rate {
			out[i] = clampUnit(out[i] + rng.NormFloat64()*sigma)
		}
	}
	return out
}

var maxUnit = math.Nextafter(1, 0)

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= 1 {
		return maxUnit
	}
	return v
}

func validateRate(name string, rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%s must be in [0,1], got %g", name, rate)
	}
	return nil
}

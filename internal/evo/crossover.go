package evo

import (
	"fmt"
	"math/rand"
)

// Crossover combines two parent genomes into one child.
type Crossover interface {
	Name() string
	Cross(rng *rand.Rand, a, b []float64) ([]float64, error)
}

// UniformCrossover recombines with probability Rate; when it does, every gene
// is taken from the second parent with probability TossProbability.
type UniformCrossover struct {
	Rate            float64
	TossProbability float64
}

func (UniformCrossover) Name() string {
	return "uniform"
}

func (c UniformCrossover) Cross(rng *rand.Rand, a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("parent length mismatch: %d != %d", len(a), len(b))
	}
	child := append([]float64(nil), a...)
	if rng.Float64() >= c.Rate {
		return child, nil
	}
	for i := range child {
		if rng.Float64() < c.TossProbability {
			child[i] = b[i]
		}
	}
	return child, nil
}

// SinglePointCrossover joins a prefix of the first parent with the suffix of
// the second at a random cut, with probability Rate.
type SinglePointCrossover struct {
	Rate float64
}

func (SinglePointCrossover) Name() string {
	return "single_point"
}

func (c SinglePointCrossover) Cross(rng *rand.Rand, a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("parent length mismatch: %d != %d", len(a), len(b))
	}
	child := append([]float64(nil), a...)
	if len(child) < 2 || rng.Float64() >= c.Rate {
		return child, nil
	}
	cut := 1 + rng.Intn(len(child)-1)
	copy(child[cut:], b[cut:])
	return child, nil
}

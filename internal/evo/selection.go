package evo

import (
	"fmt"
	"math"
	"math/rand"

	"genomaze/internal/model"
)

// Selector chooses parents from genomes ranked by descending fitness.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []ScoredGenome) (model.Genome, error)
}

// EliteSelector picks uniformly from the top Count genomes. Count <= 0 uses
// the top fifth of the population.
type EliteSelector struct {
	Count int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) PickParent(rng *rand.Rand, ranked []ScoredGenome) (model.Genome, error) {
	if err := checkSelectable(rng, ranked); err != nil {
		return model.Genome{}, err
	}
	count := s.Count
	if count <= 0 {
		count = len(ranked) / 5
	}
	if count < 1 {
		count = 1
	}
	if count > len(ranked) {
		count = len(ranked)
	}
	return ranked[rng.Intn(count)].Genome, nil
}

// TournamentSelector samples Size genomes and keeps the fittest.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []ScoredGenome) (model.Genome, error) {
	if err := checkSelectable(rng, ranked); err != nil {
		return model.Genome{}, err
	}
	size := s.Size
	if size <= 0 {
		size = 3
	}

	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < size; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Genome, nil
}

// RouletteSelector picks proportionally to fitness. Fitness values are shifted
// to be strictly positive first; a degenerate wheel falls back to uniform.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) PickParent(rng *rand.Rand, ranked []ScoredGenome) (model.Genome, error) {
	if err := checkSelectable(rng, ranked); err != nil {
		return model.Genome{}, err
	}

	minFitness := ranked[0].Fitness
	for _, item := range ranked[1:] {
		if item.Fitness < minFitness {
			minFitness = item.Fitness
		}
	}
	shift := 0.0
	if minFitness <= 0 {
		shift = -minFitness + 1e-9
	}
	total := 0.0
	for _, item := range ranked {
		total += item.Fitness + shift
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return ranked[rng.Intn(len(ranked))].Genome, nil
	}

	pick := rng.Float64() * total
	acc := 0.0
	for _, item := range ranked {
		acc += item.Fitness + shift
		if pick < acc {
			return item.Genome, nil
		}
	}
	return ranked[len(ranked)-1].Genome, nil
}

func checkSelectable(rng *rand.Rand, ranked []ScoredGenome) error {
	if rng == nil {
		return fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return fmt.Errorf("cannot select from an empty population")
	}
	return nil
}

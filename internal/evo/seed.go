package evo

import (
	"fmt"
	"math/rand"

	"genomaze/internal/model"
)

// RandomGenome draws length genes uniformly from [0,1).
func RandomGenome(rng *rand.Rand, id string, length int) model.Genome {
	genes := make([]float64, length)
	for i := range genes {
		genes[i] = rng.Float64()
	}
	return NewGenome(id, genes)
}

// RandomPopulation seeds generation 0. prefix, usually the run id, qualifies
// every genome id so genomes of different runs never collide in a store.
func RandomPopulation(rng *rand.Rand, prefix string, size, length int) []model.Genome {
	population := make([]model.Genome, 0, size)
	for i := 0; i < size; i++ {
		population = append(population, RandomGenome(rng, genomeID(prefix, 0, i), length))
	}
	return population
}

func NewGenome(id string, genes []float64) model.Genome {
	return model.Genome{
		VersionedRecord: model.CurrentVersion(),
		ID:              id,
		Genes:           genes,
	}
}

func CloneGenome(g model.Genome) model.Genome {
	out := g
	out.Genes = append([]float64(nil), g.Genes...)
	return out
}

func genomeID(prefix string, generation, index int) string {
	if prefix == "" {
		return fmt.Sprintf("g%d-i%d", generation, index)
	}
	return fmt.Sprintf("%s:g%d-i%d", prefix, generation, index)
}

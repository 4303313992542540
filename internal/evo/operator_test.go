package evo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constGenes(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestUniformCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a, b := constGenes(10, 0.1), constGenes(10, 0.9)

	child, err := UniformCrossover{Rate: 0}.Cross(rng, a, b)
	require.NoError(t, err)
	assert.Equal(t, a, child)
	child[0] = 0.5
	assert.Equal(t, 0.1, a[0], "child must not alias a parent")

	child, err = UniformCrossover{Rate: 1, TossProbability: 1}.Cross(rng, a, b)
	require.NoError(t, err)
	assert.Equal(t, b, child)

	_, err = UniformCrossover{Rate: 1}.Cross(rng, a, b[:3])
	assert.Error(t, err)
}

func TestSinglePointCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a, b := constGenes(10, 0.1), constGenes(10, 0.9)

	for i := 0; i < 20; i++ {
		child, err := SinglePointCrossover{Rate: 1}.Cross(rng, a, b)
		require.NoError(t, err)
		require.Len(t, child, 10)
		assert.Equal(t, 0.1, child[0])
		assert.Equal(t, 0.9, child[9])
		cut := 0
		for cut < len(child) && child[cut] == 0.1 {
			cut++
		}
		assert.Equal(t, constGenes(10-cut, 0.9), child[cut:])
	}

	_, err := SinglePointCrossover{Rate: 1}.Cross(rng, a, b[:1])
	assert.Error(t, err)
}

func TestSubstituteMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	genes := constGenes(50, 0.5)

	same := SubstituteMutation{Rate: 0}.Mutate(rng, genes)
	assert.Equal(t, genes, same)

	mutated := SubstituteMutation{Rate: 1}.Mutate(rng, genes)
	assert.Equal(t, constGenes(50, 0.5), genes, "input must stay untouched")
	changed := 0
	for _, v := range mutated {
		assert.True(t, v >= 0 && v < 1)
		if v != 0.5 {
			changed++
		}
	}
	assert.Greater(t, changed, 45)
}

func TestGaussianMutationStaysInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	mutated := GaussianMutation{Rate: 1, Sigma: 10}.Mutate(rng, constGenes(200, 0.5))
	for _, v := range mutated {
		assert.True(t, v >= 0 && v < 1, "gene %v escaped [0,1)", v)
	}

	assert.Equal(t, 0.0, clampUnit(-0.3))
	assert.Equal(t, 0.0, clampUnit(math.NaN()))
	assert.Less(t, clampUnit(1), 1.0)
	assert.Equal(t, 0.25, clampUnit(0.25))
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"elite", "roulette", "tournament"}, SelectorNames())
	assert.Equal(t, []string{"single_point", "uniform"}, CrossoverNames())
	assert.Equal(t, []string{"gaussian", "substitute"}, MutationNames())

	params := StrategyParams{TournamentSize: 4, CrossoverRate: 0.2, TossProbability: 0.3, MutationRate: 0.1, MutationSigma: 0.05}
	selector, err := SelectorFromName("tournament", params)
	require.NoError(t, err)
	assert.Equal(t, TournamentSelector{Size: 4}, selector)

	crossover, err := CrossoverFromName("uniform", params)
	require.NoError(t, err)
	assert.Equal(t, UniformCrossover{Rate: 0.2, TossProbability: 0.3}, crossover)

	mutation, err := MutationFromName("gaussian", params)
	require.NoError(t, err)
	assert.Equal(t, GaussianMutation{Rate: 0.1, Sigma: 0.05}, mutation)

	_, err = SelectorFromName("lottery", params)
	assert.ErrorContains(t, err, "unsupported selection")
	_, err = CrossoverFromName("uniform", StrategyParams{CrossoverRate: 1.5})
	assert.ErrorContains(t, err, "crossover rate")
	_, err = MutationFromName("substitute", StrategyParams{MutationRate: -0.1})
	assert.ErrorContains(t, err, "mutation rate")
}

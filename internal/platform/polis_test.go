package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomaze/internal/evo"
	"genomaze/internal/maze"
	"genomaze/internal/scape"
	"genomaze/internal/storage"
)

func newTestPolis(t *testing.T, rows ...string) (*Polis, *scape.MazeScape) {
	t.Helper()

	grid, err := maze.FromStrings(rows...)
	require.NoError(t, err)
	mazeScape, err := scape.NewMazeScape(grid, scape.MazeOptions{})
	require.NoError(t, err)

	p := NewPolis(Config{Store: storage.NewMemoryStore()})
	require.NoError(t, p.Init(context.Background()))
	require.NoError(t, p.RegisterScape(mazeScape))
	return p, mazeScape
}

func corridorConfig() EvolutionConfig {
	return EvolutionConfig{
		RunID:          "corridor",
		ScapeName:      scape.MazeScapeName,
		PopulationSize: 6,
		GenomeLength:   8,
		Generations:    5,
		EliteCount:     1,
		Workers:        2,
		Seed:           7,
		FitnessGoal:    5,
		Selector:       evo.RouletteSelector{},
		Crossover:      evo.UniformCrossover{Rate: 0.2, TossProbability: 0.3},
		Mutation:       evo.SubstituteMutation{Rate: 0.1},
	}
}

func TestRegisterScapeRequiresInit(t *testing.T) {
	p := NewPolis(Config{Store: storage.NewMemoryStore()})
	grid, err := maze.FromStrings("2113")
	require.NoError(t, err)
	mazeScape, err := scape.NewMazeScape(grid, scape.MazeOptions{})
	require.NoError(t, err)

	require.Error(t, p.RegisterScape(mazeScape))
	require.NoError(t, p.Init(context.Background()))
	require.NoError(t, p.RegisterScape(mazeScape))
}

func TestRunEvolutionStopsAtGoalAndPersists(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPolis(t, "2113")

	result, err := p.RunEvolution(ctx, corridorConfig())
	require.NoError(t, err)

	assert.Equal(t, "corridor", result.RunID)
	assert.True(t, result.StopReached)
	assert.Equal(t, 1, result.Generations)
	assert.Equal(t, 5.0, result.BestFinalFitness)
	require.Len(t, result.TopFinal, 5)

	history, ok, err := p.Store().GetFitnessHistory(ctx, "corridor")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{5}, history)

	top, ok, err := p.Store().GetTopGenomes(ctx, "corridor")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, top[0].Rank)
	assert.Len(t, top[0].Genome.Genes, 8)

	population, ok, err := p.Store().GetPopulation(ctx, "corridor")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, population.GenomeIDs, 6)

	summary, ok, err := p.Store().GetScapeSummary(ctx, scape.MazeScapeName)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, summary.BestFitness)
	assert.Contains(t, summary.Description, "1x4 maze")
}

func TestRunEvolutionRejectsWalledInStart(t *testing.T) {
	p, _ := newTestPolis(t,
		"2013",
		"0111",
	)

	_, err := p.RunEvolution(context.Background(), corridorConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, scape.ErrEmptyPath))
}

func TestRunEvolutionValidatesConfig(t *testing.T) {
	p, _ := newTestPolis(t, "2113")

	cfg := corridorConfig()
	cfg.ScapeName = "missing"
	_, err := p.RunEvolution(context.Background(), cfg)
	require.Error(t, err)

	cfg = corridorConfig()
	cfg.GenomeLength = 0
	_, err = p.RunEvolution(context.Background(), cfg)
	require.Error(t, err)
}

func TestResetDropsState(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPolis(t, "2113")
	_, err := p.RunEvolution(ctx, corridorConfig())
	require.NoError(t, err)

	require.NoError(t, p.Reset(ctx))
	_, err = p.RunEvolution(ctx, corridorConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scape not registered")
	_, ok, err := p.Store().GetFitnessHistory(ctx, "corridor")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunsKeepTheirOwnGenomes(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPolis(t, "1110", "0111", "2011", "1113")

	cfgA := corridorConfig()
	cfgA.RunID = "run-a"
	cfgA.Seed = 1
	cfgA.FitnessGoal = 0
	cfgA.Generations = 3
	resultA, err := p.RunEvolution(ctx, cfgA)
	require.NoError(t, err)

	cfgB := cfgA
	cfgB.RunID = "run-b"
	cfgB.Seed = 99
	_, err = p.RunEvolution(ctx, cfgB)
	require.NoError(t, err)

	population, ok, err := p.Store().GetPopulation(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, population.GenomeIDs, cfgA.PopulationSize)
	for _, id := range population.GenomeIDs {
		assert.Contains(t, id, "run-a:")
	}

	for _, top := range resultA.TopFinal {
		stored, ok, err := p.Store().GetGenome(ctx, top.Genome.ID)
		require.NoError(t, err)
		require.True(t, ok, top.Genome.ID)
		assert.Equal(t, top.Genome.Genes, stored.Genes, top.Genome.ID)
	}
}

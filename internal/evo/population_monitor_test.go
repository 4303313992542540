package evo

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomaze/internal/maze"
	"genomaze/internal/model"
	"genomaze/internal/scape"
)

func newMazeScape(t *testing.T, rows ...string) *scape.MazeScape {
	t.Helper()
	var (
		g   *maze.Grid
		err error
	)
	if len(rows) == 0 {
		g = maze.Default()
	} else {
		g, err = maze.FromStrings(rows...)
		require.NoError(t, err)
	}
	s, err := scape.NewMazeScape(g, scape.MazeOptions{})
	require.NoError(t, err)
	return s
}

func baseConfig(s scape.Scape) MonitorConfig {
	return MonitorConfig{
		Scape:          s,
		Selector:       RouletteSelector{},
		Crossover:      UniformCrossover{Rate: 0.2, TossProbability: 0.3},
		Mutation:       SubstituteMutation{Rate: 0.1},
		PopulationSize: 6,
		EliteCount:     1,
		Generations:    5,
		Workers:        2,
		Seed:           11,
	}
}

func TestMonitorStopsWhenCorridorSolved(t *testing.T) {
	s := newMazeScape(t, "2113")
	cfg := baseConfig(s)
	cfg.Stop = FitnessGoal(s.MaxDist())
	observed := 0
	cfg.Observer = func(generation int, ranked []ScoredGenome) {
		observed++
		assert.Equal(t, 1, generation)
		assert.Len(t, ranked, 6)
	}

	monitor, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	result, err := monitor.Run(context.Background(), monitor.Seed(8))
	require.NoError(t, err)

	assert.True(t, result.StopReached)
	assert.Equal(t, 1, result.Generations)
	assert.Equal(t, 6, result.Evaluations)
	assert.Equal(t, []float64{5}, result.BestByGeneration)
	assert.Equal(t, 1, observed)
	require.Len(t, result.GenerationDiagnostics, 1)
	diag := result.GenerationDiagnostics[0]
	assert.Equal(t, 6, diag.GoalReached)
	assert.Equal(t, 6, diag.DeadEnds)
	assert.Equal(t, 3.0, diag.MeanPathLength)
	assert.Len(t, result.Lineage, 6)
	for _, record := range result.Lineage {
		assert.Equal(t, "seed", record.Operation)
	}
}

func TestMonitorRunsToGenerationCap(t *testing.T) {
	s := newMazeScape(t, "2113")
	cfg := baseConfig(s)
	cfg.Generations = 3

	monitor, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	result, err := monitor.Run(context.Background(), monitor.Seed(8))
	require.NoError(t, err)

	assert.False(t, result.StopReached)
	assert.Equal(t, 3, result.Generations)
	assert.Equal(t, 18, result.Evaluations)
	assert.Len(t, result.BestByGeneration, 3)
	assert.Len(t, result.Lineage, 18)

	elites := 0
	for _, record := range result.Lineage {
		switch record.Operation {
		case "elite_clone":
			elites++
			assert.Len(t, record.ParentIDs, 1)
		case "uniform+substitute":
			assert.Len(t, record.ParentIDs, 2)
		}
	}
	assert.Equal(t, 2, elites)
}

func TestMonitorDeterministicAcrossWorkerCounts(t *testing.T) {
	s := newMazeScape(t)
	run := func(workers int) RunResult {
		cfg := baseConfig(s)
		cfg.PopulationSize = 12
		cfg.Generations = 6
		cfg.Workers = workers
		cfg.Seed = 5
		monitor, err := NewPopulationMonitor(cfg)
		require.NoError(t, err)
		result, err := monitor.Run(context.Background(), monitor.Seed(40))
		require.NoError(t, err)
		return result
	}

	serial := run(1)
	parallel := run(4)
	assert.Equal(t, serial.BestByGeneration, parallel.BestByGeneration)
	assert.Equal(t, serial.GenerationDiagnostics, parallel.GenerationDiagnostics)

	for i := 1; i < len(serial.BestByGeneration); i++ {
		assert.GreaterOrEqual(t, serial.BestByGeneration[i], serial.BestByGeneration[i-1], "elitism keeps the best genome")
	}
}

func TestMonitorPropagatesEmptyPath(t *testing.T) {
	s := newMazeScape(t, "2113")
	cfg := baseConfig(s)
	cfg.PopulationSize = 2
	monitor, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)

	initial := []model.Genome{
		NewGenome("full", []float64{0.5, 0.5, 0.5}),
		NewGenome("empty", nil),
	}
	_, err = monitor.Run(context.Background(), initial)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scape.ErrEmptyPath))
}

func TestMonitorRejectsBadInput(t *testing.T) {
	s := newMazeScape(t, "2113")

	cases := map[string]func(*MonitorConfig){
		"no scape":       func(c *MonitorConfig) { c.Scape = nil },
		"no mutation":    func(c *MonitorConfig) { c.Mutation = nil },
		"no crossover":   func(c *MonitorConfig) { c.Crossover = nil },
		"no population":  func(c *MonitorConfig) { c.PopulationSize = 0 },
		"too many elite": func(c *MonitorConfig) { c.EliteCount = 7 },
		"no generations": func(c *MonitorConfig) { c.Generations = 0 },
	}
	for name, mutate := range cases {
		cfg := baseConfig(s)
		mutate(&cfg)
		_, err := NewPopulationMonitor(cfg)
		assert.Error(t, err, name)
	}

	monitor, err := NewPopulationMonitor(baseConfig(s))
	require.NoError(t, err)
	_, err = monitor.Run(context.Background(), monitor.Seed(8)[:3])
	assert.ErrorContains(t, err, "initial population mismatch")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = monitor.Run(ctx, RandomPopulation(rand.New(rand.NewSource(1)), "", 6, 8))
	assert.ErrorIs(t, err, context.Canceled)
}

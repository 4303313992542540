package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomaze/internal/model"
)

func initMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestMemoryStoreGenomeRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := initMemoryStore(t)

	genome := model.Genome{
		VersionedRecord: model.CurrentVersion(),
		ID:              "run-1:g0-i0",
		Genes:           []float64{0.1, 0.5, 0.9},
	}
	require.NoError(t, store.SaveGenome(ctx, genome))
	genome.Genes[0] = 0.7

	loaded, ok, err := store.GetGenome(ctx, "run-1:g0-i0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.1, loaded.Genes[0], "store kept caller slice")

	loaded.Genes[1] = 0.0
	again, _, _ := store.GetGenome(ctx, "run-1:g0-i0")
	assert.Equal(t, 0.5, again.Genes[1], "store returned shared slice")
}

func TestMemoryStorePopulationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := initMemoryStore(t)

	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              "run-1",
		GenomeIDs:       []string{"run-1:g2-i0", "run-1:g2-i1"},
		Generation:      2,
	}
	require.NoError(t, store.SavePopulation(ctx, population))
	population.GenomeIDs[0] = "mutated"

	loaded, ok, err := store.GetPopulation(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"run-1:g2-i0", "run-1:g2-i1"}, loaded.GenomeIDs)
	assert.Equal(t, 2, loaded.Generation)
}

func TestMemoryStoreMissingRecords(t *testing.T) {
	ctx := context.Background()
	store := initMemoryStore(t)

	_, ok, err := store.GetGenome(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetPopulation(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetFitnessHistory(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetTopGenomes(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetLineage(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	err := store.SaveGenome(context.Background(), model.Genome{ID: "x"})
	assert.Error(t, err)
}

func TestMemoryStoreRunRecords(t *testing.T) {
	ctx := context.Background()
	store := initMemoryStore(t)

	runID := "run-1"
	require.NoError(t, store.SaveFitnessHistory(ctx, runID, []float64{3, 5, 7}))
	require.NoError(t, store.SaveGenerationDiagnostics(ctx, runID, []model.GenerationDiagnostics{{Generation: 1, BestFitness: 7}}))
	top := []model.TopGenomeRecord{{
		Rank:    1,
		Fitness: 7,
		Genome:  model.Genome{VersionedRecord: model.CurrentVersion(), ID: "run-1:g1-i0", Genes: []float64{0.2}},
	}}
	require.NoError(t, store.SaveTopGenomes(ctx, runID, top))
	require.NoError(t, store.SaveLineage(ctx, runID, []model.LineageRecord{{
		GenomeID:   "run-1:g1-i0",
		ParentIDs:  []string{"run-1:g0-i0"},
		Generation: 1,
		Operation:  "elite_clone",
	}}))

	history, ok, err := store.GetFitnessHistory(ctx, runID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{3, 5, 7}, history)

	diagnostics, ok, err := store.GetGenerationDiagnostics(ctx, runID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, diagnostics, 1)

	loadedTop, ok, err := store.GetTopGenomes(ctx, runID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1:g1-i0", loadedTop[0].Genome.ID)

	lineage, ok, err := store.GetLineage(ctx, runID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, lineage, 1)
	assert.Equal(t, []string{"run-1:g0-i0"}, lineage[0].ParentIDs)
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := initMemoryStore(t)
	require.NoError(t, store.SaveScapeSummary(ctx, model.ScapeSummary{Name: "maze", BestFitness: 4}))

	var resetter Resetter = store
	require.NoError(t, resetter.Reset(ctx))
	_, ok, _ := store.GetScapeSummary(ctx, "maze")
	assert.False(t, ok, "summary should be dropped by reset")
	assert.NoError(t, store.SaveScapeSummary(ctx, model.ScapeSummary{Name: "maze"}), "store should stay usable after reset")
}

//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomaze/internal/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "genomaze.db"))
	require.NoError(t, store.Init(ctx))
	defer func() {
		_ = store.Close()
	}()

	genome := model.Genome{VersionedRecord: model.CurrentVersion(), ID: "run-1:g0-i0", Genes: []float64{0.3, 0.6}}
	require.NoError(t, store.SaveGenome(ctx, genome))
	genome.Genes = []float64{0.9}
	require.NoError(t, store.SaveGenome(ctx, genome), "upsert")
	loaded, ok, err := store.GetGenome(ctx, "run-1:g0-i0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{0.9}, loaded.Genes)

	require.NoError(t, store.SaveFitnessHistory(ctx, "run-1", []float64{1, 2, 3}))
	history, ok, err := store.GetFitnessHistory(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, history, 3)

	require.NoError(t, store.Reset(ctx))
	_, ok, err = store.GetGenome(ctx, "run-1:g0-i0")
	require.NoError(t, err)
	assert.False(t, ok, "genome should be dropped by reset")
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

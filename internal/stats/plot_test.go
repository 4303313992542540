package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotFitnessHistoryWritesPNG(t *testing.T) {
	artifacts := sampleArtifacts("plot")
	path := filepath.Join(t.TempDir(), FitnessChartFile)

	err := PlotFitnessHistory(path, artifacts.BestByGeneration, artifacts.GenerationDiagnostics, PlotOptions{Goal: 8})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestPlotFitnessHistoryRejectsEmptySeries(t *testing.T) {
	err := PlotFitnessHistory(filepath.Join(t.TempDir(), FitnessChartFile), nil, nil, PlotOptions{})
	require.Error(t, err)
}

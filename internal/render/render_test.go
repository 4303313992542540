package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomaze/internal/evo"
	"genomaze/internal/maze"
)

func scenarioGrid(t *testing.T) *maze.Grid {
	t.Helper()
	grid, err := maze.FromStrings(
		"1110",
		"0111",
		"2011",
		"1113",
	)
	require.NoError(t, err)
	return grid
}

func TestUpdateDecodesBestPathAndEndCells(t *testing.T) {
	grid := scenarioGrid(t)
	ranked := []evo.ScoredGenome{
		{Genome: evo.NewGenome("best", []float64{0.1, 0.1, 0.1}), Fitness: 7},
		{Genome: evo.NewGenome("short", []float64{0.1}), Fitness: 5},
		{Genome: evo.NewGenome("empty", nil), Fitness: 0},
	}

	frame, err := Update(State{Grid: grid}, 4, ranked)
	require.NoError(t, err)

	assert.Equal(t, 4, frame.Generation)
	assert.Equal(t, "best", frame.BestGenomeID)
	assert.Equal(t, 7.0, frame.BestFitness)
	require.Len(t, frame.BestPath, 3)
	assert.Equal(t, maze.Position{Row: 3, Col: 2}, frame.BestPath[2])
	assert.Equal(t, []maze.Position{{Row: 3, Col: 2}, {Row: 3, Col: 0}}, frame.EndCells)
	assert.Equal(t, 1, frame.EmptyPaths)
}

func TestUpdateRequiresGrid(t *testing.T) {
	_, err := Update(State{}, 1, nil)
	require.Error(t, err)
}

func TestWriteASCII(t *testing.T) {
	grid := scenarioGrid(t)
	frame, err := Update(State{Grid: grid}, 1, []evo.ScoredGenome{
		{Genome: evo.NewGenome("best", []float64{0.1, 0.1, 0.1}), Fitness: 7},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteASCII(&buf, grid, frame))

	want := "generation 1 best=7 id=best path=3\n" +
		"...#\n" +
		"#...\n" +
		"S#..\n" +
		"***G\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteASCIIMarksEndCells(t *testing.T) {
	grid, err := maze.FromStrings("2113")
	require.NoError(t, err)

	frame := Frame{EndCells: []maze.Position{{Row: 0, Col: 1}}}
	var buf bytes.Buffer
	require.NoError(t, WriteASCII(&buf, grid, frame))
	assert.Equal(t, "generation 0 best=0 id= path=0\nSo.G\n", buf.String())
}

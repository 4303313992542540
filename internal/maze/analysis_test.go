package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeScenario(t *testing.T) {
	g, err := FromStrings(
		"1110",
		"0111",
		"2011",
		"1113",
	)
	require.NoError(t, err)

	inclusive := Analyze(g, EdgeInclusive)
	assert.Equal(t, 13, inclusive.OpenCells)
	assert.Equal(t, 13, inclusive.ReachableCells)
	assert.True(t, inclusive.Reachable)
	assert.Equal(t, 4, inclusive.ShortestPath)

	legacy := Analyze(g, EdgeLegacy)
	assert.Equal(t, 10, legacy.ReachableCells)
	assert.True(t, legacy.Reachable)
	assert.Equal(t, 4, legacy.ShortestPath)
}

func TestAnalyzeDefaultMazeByPolicy(t *testing.T) {
	g := Default()

	inclusive := Analyze(g, EdgeInclusive)
	assert.Equal(t, 54, inclusive.OpenCells)
	assert.Equal(t, 54, inclusive.ReachableCells)
	assert.True(t, inclusive.Reachable)
	assert.Equal(t, 21, inclusive.ShortestPath)

	// The start sits in the corner, so the legacy bound cuts most of the
	// maze off.
	legacy := Analyze(g, EdgeLegacy)
	assert.False(t, legacy.Reachable)
	assert.Equal(t, -1, legacy.ShortestPath)
	assert.Equal(t, 6, legacy.ReachableCells)
}

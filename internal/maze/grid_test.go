package maze

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStringsScenario(t *testing.T) {
	g, err := FromStrings(
		"1110",
		"0111",
		"2011",
		"1113",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Rows())
	assert.Equal(t, 4, g.Cols())
	assert.Equal(t, Position{Row: 2, Col: 0}, g.Start())
	assert.Equal(t, Position{Row: 3, Col: 3}, g.End())
	assert.Equal(t, 8.0, g.MaxDist())
	assert.Equal(t, Wall, g.At(Position{Row: -1, Col: 0}), "out-of-bounds cells read as wall")
	assert.Equal(t, Wall, g.At(Position{Row: 0, Col: 4}), "out-of-bounds cells read as wall")
	assert.Equal(t, []string{"1110", "0111", "2011", "1113"}, g.Lines())
}

func TestParseIgnoresTrailingBlankLinesAndCRLF(t *testing.T) {
	g, err := Parse(strings.NewReader("2113\r\n\n\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, g.Rows())
	assert.Equal(t, 4, g.Cols())
}

func TestMalformedMazeCollectsEveryProblem(t *testing.T) {
	_, err := FromStrings(
		"1111",
		"11",
		"1191",
	)
	require.ErrorIs(t, err, ErrMalformedMaze)
	var malformed *MalformedMazeError
	require.True(t, errors.As(err, &malformed), "got %T", err)
	// width, unknown code, no start, no goal
	assert.Len(t, malformed.Problems(), 4)
	for _, want := range []string{"row 1 has 2 cells", "unknown code 9", "missing start", "missing goal"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestMalformedMazeCases(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		want string
	}{
		{name: "empty", rows: nil, want: "maze is empty"},
		{name: "two starts", rows: []string{"2213"}, want: "found 2 start cells"},
		{name: "two goals", rows: []string{"2133"}, want: "found 2 goal cells"},
		{name: "non digit", rows: []string{"21x3"}, want: "is not a digit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromStrings(tc.rows...)
			require.ErrorIs(t, err, ErrMalformedMaze)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFileNamesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.maze")
	require.NoError(t, os.WriteFile(path, []byte("1111\n"), 0o644))
	_, err := LoadFile(path)
	require.ErrorIs(t, err, ErrMalformedMaze)
	assert.Contains(t, err.Error(), path)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.maze"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultMaze(t *testing.T) {
	g, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, g.Rows())
	assert.Equal(t, 10, g.Cols())
	assert.Equal(t, Position{Row: 0, Col: 0}, g.Start())
	assert.Equal(t, Position{Row: 8, Col: 9}, g.End())
	assert.Equal(t, 19.0, g.MaxDist())
}

func TestManhattan(t *testing.T) {
	assert.Equal(t, 1, Manhattan(Position{Row: 3, Col: 2}, Position{Row: 3, Col: 3}))
	assert.Equal(t, 8, Manhattan(Position{Row: 0, Col: 5}, Position{Row: 4, Col: 1}))
}

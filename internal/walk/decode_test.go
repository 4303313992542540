package walk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomaze/internal/maze"
)

func mustGrid(t *testing.T, rows ...string) *maze.Grid {
	t.Helper()
	g, err := maze.FromStrings(rows...)
	require.NoError(t, err)
	return g
}

func scenario(t *testing.T) *maze.Grid {
	return mustGrid(t,
		"1110",
		"0111",
		"2011",
		"1113",
	)
}

func TestDecodeScenario(t *testing.T) {
	g := scenario(t)
	want := Path{{Row: 3, Col: 0}, {Row: 3, Col: 1}, {Row: 3, Col: 2}}
	for _, policy := range []maze.EdgePolicy{maze.EdgeInclusive, maze.EdgeLegacy} {
		got := Decoder{Policy: policy}.Decode([]float64{0.1, 0.1, 0.1}, g, g.Start())
		assert.Equal(t, want, got, policy.String())
	}
}

func TestDecodeEmptyGenome(t *testing.T) {
	g := scenario(t)
	res := Decoder{}.Walk(nil, g, g.Start())
	assert.Empty(t, res.Path)
	assert.False(t, res.DeadEnd)
	_, ok := res.Path.Last()
	assert.False(t, ok, "empty path must have no last cell")
}

func TestDecodeWalledInStart(t *testing.T) {
	g := mustGrid(t,
		"2013",
		"0111",
	)
	res := Decoder{}.Walk([]float64{0.5, 0.5}, g, g.Start())
	assert.Empty(t, res.Path)
	assert.True(t, res.DeadEnd)
}

func TestDecodeStopsAtDeadEnd(t *testing.T) {
	g := mustGrid(t, "2113")
	genome := []float64{0.9, 0.9, 0.9, 0.9, 0.9}
	res := Decoder{}.Walk(genome, g, g.Start())
	assert.Equal(t, Path{{Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}}, res.Path)
	assert.True(t, res.DeadEnd, "the goal is a leaf")
	assert.Less(t, len(res.Path), len(genome))
}

func TestDecodeEdgePolicyDiffersOnRowZero(t *testing.T) {
	g := mustGrid(t,
		"31",
		"02",
	)
	inclusive := Decoder{Policy: maze.EdgeInclusive}.Walk([]float64{0.5, 0.5}, g, g.Start())
	assert.Equal(t, Path{{Row: 0, Col: 1}, {Row: 0, Col: 0}}, inclusive.Path)

	legacy := Decoder{Policy: maze.EdgeLegacy}.Walk([]float64{0.5, 0.5}, g, g.Start())
	assert.Empty(t, legacy.Path)
	assert.True(t, legacy.DeadEnd)
}

func TestDecodeCountsDomainViolations(t *testing.T) {
	g := mustGrid(t, "2113")
	res := Decoder{}.Walk([]float64{1.5, -0.25, math.NaN()}, g, g.Start())
	assert.Equal(t, 3, res.DomainViolations)
	assert.Len(t, res.Path, 3, "out-of-domain values still move")

	res = Decoder{}.Walk([]float64{0, 0.5, 0.999}, g, g.Start())
	assert.Zero(t, res.DomainViolations)
}

func TestBucket(t *testing.T) {
	cases := []struct {
		step    float64
		k       int
		want    int
		outcome bucketOutcome
	}{
		{step: 0, k: 4, want: 0, outcome: bucketInDomain},
		{step: 0.24, k: 4, want: 0, outcome: bucketInDomain},
		{step: 0.25, k: 4, want: 1, outcome: bucketInDomain},
		{step: 0.5, k: 2, want: 1, outcome: bucketInDomain},
		{step: math.Nextafter(1, 0), k: 3, want: 2, outcome: bucketInDomain},
		{step: math.Nextafter(1, 0), k: 4, want: 3, outcome: bucketInDomain},
		{step: 1, k: 3, want: 0, outcome: bucketOutOfDomain},
		{step: -0.1, k: 3, want: 0, outcome: bucketOutOfDomain},
		{step: math.Inf(1), k: 2, want: 0, outcome: bucketOutOfDomain},
		{step: math.NaN(), k: 2, want: 0, outcome: bucketOutOfDomain},
	}
	for _, tc := range cases {
		got, outcome := bucket(tc.step, tc.k)
		assert.Equal(t, tc.want, got, "bucket(%v,%d)", tc.step, tc.k)
		assert.Equal(t, tc.outcome, outcome, "bucket(%v,%d)", tc.step, tc.k)
	}
}

func TestBucketStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		step := rng.Float64()
		for k := 1; k <= 4; k++ {
			idx, _ := bucket(step, k)
			require.True(t, idx >= 0 && idx < k, "bucket(%v,%d)=%d", step, k, idx)
		}
	}
}

func TestDecodePathProperties(t *testing.T) {
	g := maze.Default()
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		genome := make([]float64, 1+rng.Intn(60))
		for i := range genome {
			genome[i] = rng.Float64()
		}

		path := Decode(genome, g, g.Start())
		require.LessOrEqual(t, len(path), len(genome))
		require.Equal(t, path, Decode(genome, g, g.Start()), "decode is not deterministic")

		seen := map[maze.Position]bool{g.Start(): true}
		prev := g.Start()
		for _, p := range path {
			require.True(t, g.Passable(p), "path steps on wall %v", p)
			require.False(t, seen[p], "path revisits %v", p)
			require.Equal(t, 1, maze.Manhattan(prev, p), "non-adjacent step %v -> %v", prev, p)
			seen[p] = true
			prev = p
		}
	}
}

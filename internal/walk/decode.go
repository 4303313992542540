package walk

import (
	"math"

	"genomaze/internal/maze"
)

// Path is the ordered list of cells stepped on during one decode; the start
// cell itself is not part of it.
type Path []maze.Position

// Last returns the resting cell of the walk.
func (p Path) Last() (maze.Position, bool) {
	if len(p) == 0 {
		return maze.Position{}, false
	}
	return p[len(p)-1], true
}

// Result is a decoded path plus what happened while decoding it.
type Result struct {
	Path Path
	// DeadEnd is set when the walk stopped before the genome was exhausted
	// because no candidate move was left.
	DeadEnd bool
	// DomainViolations counts genome values outside [0,1); each of them
	// selected the first candidate.
	DomainViolations int
	// Clamped counts in-domain values whose bucket index rounded past the last
	// candidate and was clamped to it.
	Clamped int
}

// Decoder maps genomes to walks. The zero value uses maze.EdgeInclusive.
type Decoder struct {
	Policy maze.EdgePolicy
}

// Decode walks grid from start with the default decoder.
func Decode(genome []float64, grid *maze.Grid, start maze.Position) Path {
	return Decoder{}.Decode(genome, grid, start)
}

func (d Decoder) Decode(genome []float64, grid *maze.Grid, start maze.Position) Path {
	return d.Walk(genome, grid, start).Path
}

// Walk consumes one genome value per move. At every step the open, unvisited
// orthogonal neighbours are listed (down, up, left, right) and the value picks
// one of them by equal-width bucket. The walk ends when the genome is
// exhausted or no candidate is left.
func (d Decoder) Walk(genome []float64, grid *maze.Grid, start maze.Position) Result {
	res := Result{Path: make(Path, 0, len(genome))}
	if grid == nil || !grid.InBounds(start) {
		res.DeadEnd = len(genome) > 0
		return res
	}

	visited := make([]bool, grid.Size())
	isVisited := func(p maze.Position) bool {
		return visited[grid.Index(p)]
	}
	visited[grid.Index(start)] = true

	current := start
	candidates := make([]maze.Position, 0, 4)
	for _, step := range genome {
		candidates = grid.AppendOpenNeighbors(candidates[:0], current, d.Policy, isVisited)
		if len(candidates) == 0 {
			res.DeadEnd = true
			break
		}

		idx, outcome := bucket(step, len(candidates))
		switch outcome {
		case bucketOutOfDomain:
			res.DomainViolations++
		case bucketClamped:
			res.Clamped++
		}

		current = candidates[idx]
		visited[grid.Index(current)] = true
		res.Path = append(res.Path, current)
	}
	return res
}

type bucketOutcome int

const (
	bucketInDomain bucketOutcome = iota
	bucketClamped
	bucketOutOfDomain
)

// bucket partitions [0,1) into k equal intervals and returns the interval
// holding step. Values outside the domain select index 0.
func bucket(step float64, k int) (int, bucketOutcome) {
	if math.IsNaN(step) || step < 0 || step >= 1 {
		return 0, bucketOutOfDomain
	}
	idx := int(math.Floor(step * float64(k)))
	if idx >= k {
		return k - 1, bucketClamped
	}
	return idx, bucketInDomain
}

package scape

import (
	"context"
	"errors"
	"fmt"

	"genomaze/internal/maze"
	"genomaze/internal/walk"
)

const MazeScapeName = "maze"

// ErrEmptyPath is returned when a genome never leaves the start cell, so there
// is no resting cell to measure.
var ErrEmptyPath = errors.New("decoded path is empty")

// MazeFitness decodes genome and scores the resting cell: maxDist minus its
// Manhattan distance to end.
func MazeFitness(genome []float64, grid *maze.Grid, start, end maze.Position, maxDist float64) (float64, error) {
	return scorePath(walk.Decode(genome, grid, start), len(genome), end, maxDist, 0)
}

func scorePath(path walk.Path, genomeLen int, end maze.Position, maxDist, lengthPenalty float64) (float64, error) {
	last, ok := path.Last()
	if !ok {
		return 0, ErrEmptyPath
	}
	fitness := maxDist - float64(maze.Manhattan(last, end))
	if lengthPenalty != 0 && genomeLen > 0 {
		fitness -= lengthPenalty * float64(len(path)) / float64(genomeLen)
	}
	return fitness, nil
}

type MazeOptions struct {
	Policy maze.EdgePolicy
	// MaxDist overrides the grid's rows+cols baseline when > 0.
	MaxDist float64
	// LengthPenalty scales len(path)/len(genome) and is subtracted from the
	// score. Zero keeps the plain distance score.
	LengthPenalty float64
}

// MazeScape evaluates genome agents on a fixed maze.
type MazeScape struct {
	grid          *maze.Grid
	decoder       walk.Decoder
	maxDist       float64
	lengthPenalty float64
}

func NewMazeScape(grid *maze.Grid, opts MazeOptions) (*MazeScape, error) {
	if grid == nil {
		return nil, fmt.Errorf("maze grid is required")
	}
	if opts.MaxDist < 0 {
		return nil, fmt.Errorf("max dist must be >= 0, got %g", opts.MaxDist)
	}
	if opts.LengthPenalty < 0 {
		return nil, fmt.Errorf("length penalty must be >= 0, got %g", opts.LengthPenalty)
	}
	maxDist := opts.MaxDist
	if maxDist == 0 {
		maxDist = grid.MaxDist()
	}
	return &MazeScape{
		grid:          grid,
		decoder:       walk.Decoder{Policy: opts.Policy},
		maxDist:       maxDist,
		lengthPenalty: opts.LengthPenalty,
	}, nil
}

func (*MazeScape) Name() string {
	return MazeScapeName
}

func (s *MazeScape) Grid() *maze.Grid {
	return s.grid
}

func (s *MazeScape) Policy() maze.EdgePolicy {
	return s.decoder.Policy
}

// MaxDist is the best fitness a genome can reach on this scape.
func (s *MazeScape) MaxDist() float64 {
	return s.maxDist
}

// BestAchievable bounds the score a genome of genomeLength genes can reach:
// the goal entered along a shortest path, so the smallest length penalty. ok
// is false when the goal is unreachable or farther than genomeLength moves.
func (s *MazeScape) BestAchievable(genomeLength int) (float64, bool) {
	analysis := maze.Analyze(s.grid, s.decoder.Policy)
	if genomeLength <= 0 || !analysis.Reachable || analysis.ShortestPath > genomeLength {
		return s.maxDist, false
	}
	return s.maxDist - s.lengthPenalty*float64(analysis.ShortestPath)/float64(genomeLength), true
}

// Walk decodes genome without scoring it.
func (s *MazeScape) Walk(genome []float64) walk.Result {
	return s.decoder.Walk(genome, s.grid, s.grid.Start())
}

func (s *MazeScape) Path(genome []float64) walk.Path {
	return s.Walk(genome).Path
}

// Score decodes genome once and returns its fitness with the decode result.
func (s *MazeScape) Score(genome []float64) (float64, walk.Result, error) {
	res := s.Walk(genome)
	fitness, err := scorePath(res.Path, len(genome), s.grid.End(), s.maxDist, s.lengthPenalty)
	return fitness, res, err
}

func (s *MazeScape) Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	genomeAgent, ok := agent.(GenomeAgent)
	if !ok {
		return 0, nil, fmt.Errorf("agent %s does not expose a genome", agent.ID())
	}

	fitness, res, err := s.Score(genomeAgent.Genes())
	if err != nil {
		return 0, nil, fmt.Errorf("agent %s: %w", agent.ID(), err)
	}
	last, _ := res.Path.Last()
	distance := maze.Manhattan(last, s.grid.End())
	return Fitness(fitness), Trace{
		"path_length":       len(res.Path),
		"final_row":         last.Row,
		"final_col":         last.Col,
		"distance":          distance,
		"reached_goal":      distance == 0,
		"dead_end":          res.DeadEnd,
		"domain_violations": res.DomainViolations,
	}, nil
}

// Describe summarizes the maze for scape listings.
func (s *MazeScape) Describe() string {
	analysis := maze.Analyze(s.grid, s.decoder.Policy)
	return fmt.Sprintf(
		"%dx%d maze start=%s goal=%s policy=%s reachable=%t shortest=%d max_dist=%g",
		s.grid.Rows(), s.grid.Cols(), s.grid.Start(), s.grid.End(),
		analysis.Policy, analysis.Reachable, analysis.ShortestPath, s.maxDist,
	)
}

// Preflight rejects runs that could only ever produce empty paths.
func (s *MazeScape) Preflight(genomeLength int) error {
	if genomeLength <= 0 {
		return fmt.Errorf("genome length must be > 0, got %d", genomeLength)
	}
	start := s.grid.Start()
	if len(s.grid.OpenNeighbors(start, s.decoder.Policy, nil)) == 0 {
		return fmt.Errorf("start %s is walled in: %w", start, ErrEmptyPath)
	}
	return nil
}

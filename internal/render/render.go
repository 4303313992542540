// Package render draws the population of one generation onto its maze.
package render

import (
	"bufio"
	"fmt"
	"io"

	"genomaze/internal/evo"
	"genomaze/internal/maze"
	"genomaze/internal/walk"
)

const (
	glyphWall   = '#'
	glyphFloor  = '.'
	glyphStart  = 'S'
	glyphGoal   = 'G'
	glyphPath   = '*'
	glyphEndpos = 'o'
)

// State is everything a frame needs besides the ranked population. It is
// passed to Update explicitly; nothing is kept between calls.
type State struct {
	Grid    *maze.Grid
	Decoder walk.Decoder
}

type Frame struct {
	Generation   int             `json:"generation"`
	BestGenomeID string          `json:"best_genome_id,omitempty"`
	BestFitness  float64         `json:"best_fitness"`
	BestPath     walk.Path       `json:"best_path"`
	EndCells     []maze.Position `json:"end_cells"`
	// EmptyPaths counts individuals that never left the start cell and so
	// have no end cell.
	EmptyPaths int `json:"empty_paths"`
}

// Update re-decodes the best genome's path and every individual's final cell.
// ranked must be sorted best first.
func Update(state State, generation int, ranked []evo.ScoredGenome) (Frame, error) {
	if state.Grid == nil {
		return Frame{}, fmt.Errorf("render state has no grid")
	}

	frame := Frame{
		Generation: generation,
		BestPath:   walk.Path{},
		EndCells:   make([]maze.Position, 0, len(ranked)),
	}
	start := state.Grid.Start()
	for i, scored := range ranked {
		path := state.Decoder.Decode(scored.Genome.Genes, state.Grid, start)
		if i == 0 {
			frame.BestGenomeID = scored.Genome.ID
			frame.BestFitness = scored.Fitness
			frame.BestPath = path
		}
		last, ok := path.Last()
		if !ok {
			frame.EmptyPaths++
			continue
		}
		frame.EndCells = append(frame.EndCells, last)
	}
	return frame, nil
}

// WriteASCII prints a header line followed by one line per maze row.
func WriteASCII(w io.Writer, grid *maze.Grid, frame Frame) error {
	if grid == nil {
		return fmt.Errorf("grid is required")
	}

	canvas := make([][]byte, grid.Rows())
	for r := range canvas {
		row := make([]byte, grid.Cols())
		for c := range row {
			row[c] = glyphFor(grid.At(maze.Position{Row: r, Col: c}))
		}
		canvas[r] = row
	}
	plot := func(p maze.Position, glyph byte) {
		if !grid.InBounds(p) {
			return
		}
		if cell := grid.At(p); cell == maze.Start || cell == maze.Goal {
			return
		}
		canvas[p.Row][p.Col] = glyph
	}
	for _, p := range frame.EndCells {
		plot(p, glyphEndpos)
	}
	for _, p := range frame.BestPath {
		plot(p, glyphPath)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "generation %d best=%g id=%s path=%d\n",
		frame.Generation, frame.BestFitness, frame.BestGenomeID, len(frame.BestPath))
	for _, row := range canvas {
		bw.Write(row)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func glyphFor(cell maze.Cell) byte {
	switch cell {
	case maze.Wall:
		return glyphWall
	case maze.Start:
		return glyphStart
	case maze.Goal:
		return glyphGoal
	default:
		return glyphFloor
	}
}

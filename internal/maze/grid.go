package maze

import (
	"fmt"
	"strings"
)

// Cell is a single grid code as it appears in a maze file.
type Cell int

const (
	Wall  Cell = 0
	Open  Cell = 1
	Start Cell = 2
	Goal  Cell = 3
)

func (c Cell) Passable() bool {
	return c == Open || c == Start || c == Goal
}

func (c Cell) valid() bool {
	return c >= Wall && c <= Goal
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Manhattan returns |a.Row-b.Row| + |a.Col-b.Col|.
func Manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// Grid is an immutable rectangular maze with exactly one start and one goal.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
	start Position
	end   Position
}

// New validates rows and copies them into a Grid. Every defect found is
// reported through a single *MalformedMazeError.
func New(rows [][]Cell) (*Grid, error) {
	return build("", rows)
}

func build(source string, rows [][]Cell) (*Grid, error) {
	problems := &problemList{}
	if len(rows) == 0 {
		problems.add(fmt.Errorf("maze is empty"))
		return nil, problems.err(source)
	}
	if len(rows[0]) == 0 {
		problems.add(fmt.Errorf("row 0 is empty"))
		return nil, problems.err(source)
	}

	cols := len(rows[0])
	g := &Grid{
		rows:  len(rows),
		cols:  cols,
		cells: make([]Cell, len(rows)*cols),
	}

	starts := make([]Position, 0, 1)
	goals := make([]Position, 0, 1)
	for r, row := range rows {
		if len(row) != cols {
			problems.add(fmt.Errorf("row %d has %d cells, want %d", r, len(row), cols))
			continue
		}
		for c, cell := range row {
			if !cell.valid() {
				problems.add(fmt.Errorf("cell (%d,%d) has unknown code %d", r, c, int(cell)))
				continue
			}
			g.cells[r*cols+c] = cell
			switch cell {
			case Start:
				starts = append(starts, Position{Row: r, Col: c})
			case Goal:
				goals = append(goals, Position{Row: r, Col: c})
			}
		}
	}

	switch len(starts) {
	case 0:
		problems.add(fmt.Errorf("missing start cell (code %d)", Start))
	case 1:
		g.start = starts[0]
	default:
		problems.add(fmt.Errorf("found %d start cells at %v, want exactly one", len(starts), starts))
	}
	switch len(goals) {
	case 0:
		problems.add(fmt.Errorf("missing goal cell (code %d)", Goal))
	case 1:
		g.end = goals[0]
	default:
		problems.add(fmt.Errorf("found %d goal cells at %v, want exactly one", len(goals), goals))
	}

	if err := problems.err(source); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grid) Rows() int {
	return g.rows
}

func (g *Grid) Cols() int {
	return g.cols
}

func (g *Grid) Start() Position {
	return g.start
}

func (g *Grid) End() Position {
	return g.end
}

// MaxDist is the normalizing baseline used by the fitness evaluator: rows+cols.
func (g *Grid) MaxDist() float64 {
	return float64(g.rows + g.cols)
}

func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// At returns the cell at p; positions outside the grid read as Wall.
func (g *Grid) At(p Position) Cell {
	if !g.InBounds(p) {
		return Wall
	}
	return g.cells[p.Row*g.cols+p.Col]
}

func (g *Grid) Passable(p Position) bool {
	return g.At(p).Passable()
}

// Index flattens p into [0, Rows()*Cols()).
func (g *Grid) Index(p Position) int {
	return p.Row*g.cols + p.Col
}

// Size is the number of cells in the grid.
func (g *Grid) Size() int {
	return len(g.cells)
}

// Lines renders the grid back into its file representation, one string per row.
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	var sb strings.Builder
	for r := 0; r < g.rows; r++ {
		sb.Reset()
		for c := 0; c < g.cols; c++ {
			sb.WriteByte(byte('0' + g.cells[r*g.cols+c]))
		}
		lines[r] = sb.String()
	}
	return lines
}

func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n") + "\n"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

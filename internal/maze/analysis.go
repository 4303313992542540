package maze

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Analysis describes what the move graph of a grid allows under a policy.
type Analysis struct {
	Policy         string `json:"policy"`
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	OpenCells      int    `json:"open_cells"`
	ReachableCells int    `json:"reachable_cells"`
	Reachable      bool   `json:"reachable"`
	// ShortestPath is the minimum number of moves from start to goal, -1 when
	// the goal cannot be reached.
	ShortestPath int `json:"shortest_path"`
}

// Analyze builds the directed move graph of g (the legacy edge policy is not
// symmetric) and measures goal reachability from the start cell.
func Analyze(g *Grid, policy EdgePolicy) Analysis {
	dg := simple.NewDirectedGraph()
	open := make([]Position, 0, g.Size())
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			p := Position{Row: r, Col: c}
			if g.Passable(p) {
				open = append(open, p)
				dg.AddNode(simple.Node(g.Index(p)))
			}
		}
	}

	buf := make([]Position, 0, 4)
	for _, p := range open {
		buf = g.AppendOpenNeighbors(buf[:0], p, policy, nil)
		for _, n := range buf {
			dg.SetEdge(dg.NewEdge(simple.Node(g.Index(p)), simple.Node(g.Index(n))))
		}
	}

	shortest := path.DijkstraFrom(simple.Node(g.Index(g.start)), dg)
	out := Analysis{
		Policy:       policy.String(),
		Rows:         g.rows,
		Cols:         g.cols,
		OpenCells:    len(open),
		ShortestPath: -1,
	}
	for _, p := range open {
		if !math.IsInf(shortest.WeightTo(int64(g.Index(p))), 1) {
			out.ReachableCells++
		}
	}
	if w := shortest.WeightTo(int64(g.Index(g.end))); !math.IsInf(w, 1) {
		out.Reachable = true
		out.ShortestPath = int(w)
	}
	return out
}

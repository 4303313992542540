package maze

import "fmt"

// EdgePolicy decides how the lower grid bound is checked for up/left moves.
type EdgePolicy int

const (
	// EdgeInclusive admits row 0 and column 0 as move targets.
	EdgeInclusive EdgePolicy = iota
	// EdgeLegacy keeps the historical strict test (target index > 0): row 0 and
	// column 0 are never entered by an up or left move.
	EdgeLegacy
)

func (p EdgePolicy) String() string {
	switch p {
	case EdgeInclusive:
		return "inclusive"
	case EdgeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("edge_policy(%d)", int(p))
	}
}

func ParseEdgePolicy(name string) (EdgePolicy, error) {
	switch name {
	case "", "inclusive":
		return EdgeInclusive, nil
	case "legacy":
		return EdgeLegacy, nil
	default:
		return 0, fmt.Errorf("unsupported edge policy: %s", name)
	}
}

func (p EdgePolicy) lowerBoundOK(target int) bool {
	if p == EdgeLegacy {
		return target > 0
	}
	return target >= 0
}

// OpenNeighbors lists the candidate moves from p in down, up, left, right
// order. visited may be nil.
func (g *Grid) OpenNeighbors(p Position, policy EdgePolicy, visited func(Position) bool) []Position {
	return g.AppendOpenNeighbors(make([]Position, 0, 4), p, policy, visited)
}

// AppendOpenNeighbors is OpenNeighbors writing into dst.
func (g *Grid) AppendOpenNeighbors(dst []Position, p Position, policy EdgePolicy, visited func(Position) bool) []Position {
	down := Position{Row: p.Row + 1, Col: p.Col}
	if down.Row < g.rows && g.open(down, visited) {
		dst = append(dst, down)
	}
	up := Position{Row: p.Row - 1, Col: p.Col}
	if policy.lowerBoundOK(up.Row) && g.open(up, visited) {
		dst = append(dst, up)
	}
	left := Position{Row: p.Row, Col: p.Col - 1}
	if policy.lowerBoundOK(left.Col) && g.open(left, visited) {
		dst = append(dst, left)
	}
	right := Position{Row: p.Row, Col: p.Col + 1}
	if right.Col < g.cols && g.open(right, visited) {
		dst = append(dst, right)
	}
	return dst
}

func (g *Grid) open(p Position, visited func(Position) bool) bool {
	if !g.Passable(p) {
		return false
	}
	return visited == nil || !visited(p)
}

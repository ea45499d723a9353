package graph

const (
	minCost = 10
	maxCost = 40
)

// CompleteGraph is a complete digraph with pseudo-random integer costs in [10, 40].
//
// Costs come from the Park-Miller minimal standard generator (Schrage's
// factorisation) seeded at 1, so a given vertex count always yields the same
// matrix. It exists to drive reproducible solver tests.
type CompleteGraph struct {
	n     int
	costs [][]int
}

func NewCompleteGraph(n int) *CompleteGraph {
	if n < 0 {
		n = 0
	}

	costs := make([][]int, n)
	seed := 1
	for i := 0; i < n; i++ {
		costs[i] = make([]int, n)
		for j := 0; j < n; j++ {
			if i == j {
				costs[i][j] = -1
				continue
			}

			it := 16807*(seed%127773) - 2836*(seed/127773)
			if it > 0 {
				seed = it
			} else {
				seed = it + 2147483647
			}
			costs[i][j] = minCost + seed%(maxCost-minCost+1)
		}
	}

	return &CompleteGraph{n: n, costs: costs}
}

func (g *CompleteGraph) VertexCount() int { return g.n }

func (g *CompleteGraph) Cost(i, j int) float64 {
	if !validCoordinates(i, j, g.n) || i == j {
		return NoCost
	}
	return float64(g.costs[i][j])
}

func (g *CompleteGraph) IsArc(i, j int) bool {
	return validCoordinates(i, j, g.n) && i != j
}

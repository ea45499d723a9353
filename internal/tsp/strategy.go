package tsp

import (
	"delivery-tour-service/internal/graph"
	"iter"
	"math"
	"slices"
)

// ZeroBound never prunes on cost estimate; the search becomes exhaustive.
func ZeroBound(graph.Graph, []int, []int) float64 { return 0 }

// MinInboundBound charges every vertex still to be entered with its cheapest
// possible incoming arc. Unvisited vertices are entered from the current
// vertex or another unvisited vertex; vertex 0 is re-entered from an
// unvisited vertex. Each remaining arc enters exactly one of those vertices,
// so the sum never overestimates. A vertex that cannot be entered at all
// yields +Inf.
func MinInboundBound(g graph.Graph, path []int, unvisited []int) float64 {
	current := path[len(path)-1]
	total := 0.0

	for _, v := range unvisited {
		best := math.Inf(1)
		if g.IsArc(current, v) {
			best = g.Cost(current, v)
		}
		for _, u := range unvisited {
			if u != v && g.IsArc(u, v) {
				best = min(best, g.Cost(u, v))
			}
		}
		if math.IsInf(best, 1) {
			return best
		}
		total += best
	}

	closing := math.Inf(1)
	for _, u := range unvisited {
		if g.IsArc(u, 0) {
			closing = min(closing, g.Cost(u, 0))
		}
	}
	return total + closing
}

// reachable snapshots the unvisited vertices reachable from the last vertex of
// path, in unvisited order.
func reachable(g graph.Graph, path []int, unvisited []int) []int {
	current := path[len(path)-1]
	out := make([]int, 0, len(unvisited))
	for _, v := range unvisited {
		if g.IsArc(current, v) {
			out = append(out, v)
		}
	}
	return out
}

// LIFOCandidates yields reachable unvisited vertices in reverse order.
func LIFOCandidates(g graph.Graph, path []int, unvisited []int) iter.Seq[int] {
	cands := reachable(g, path, unvisited)
	return func(yield func(int) bool) {
		for i := len(cands) - 1; i >= 0; i-- {
			if !yield(cands[i]) {
				return
			}
		}
	}
}

// AscendingCandidates yields reachable unvisited vertices by increasing index,
// so circuits are explored in lexicographic order.
func AscendingCandidates(g graph.Graph, path []int, unvisited []int) iter.Seq[int] {
	cands := reachable(g, path, unvisited)
	slices.Sort(cands)
	return slices.Values(cands)
}

// CheapestCandidates yields reachable unvisited vertices by increasing arc
// cost from the current vertex, ties broken by index.
func CheapestCandidates(g graph.Graph, path []int, unvisited []int) iter.Seq[int] {
	current := path[len(path)-1]
	cands := reachable(g, path, unvisited)
	slices.SortFunc(cands, func(a, b int) int {
		ca, cb := g.Cost(current, a), g.Cost(current, b)
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		}
		return a - b
	})
	return slices.Values(cands)
}

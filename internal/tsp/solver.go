// Package tsp searches minimum-cost Hamiltonian circuits with a depth-first
// branch-and-bound. The bounding function and the successor order are
// pluggable: any admissible bound keeps the result optimal, the candidate order
// only changes how fast good circuits are found.
package tsp

import (
	"delivery-tour-service/internal/graph"
	"iter"
	"math"
	"time"
)

// NoVertex is returned by Solution when no circuit is available.
const NoVertex = -1

// BoundFunc returns a lower bound on the cost of completing the partial
// circuit path (starting at vertex 0) through every unvisited vertex and back
// to 0. Returning +Inf declares the branch infeasible.
type BoundFunc func(g graph.Graph, path []int, unvisited []int) float64

// CandidateFunc yields the successors to explore after the last vertex of
// path, drawn from unvisited. The sequence is finite and consumed once.
type CandidateFunc func(g graph.Graph, path []int, unvisited []int) iter.Seq[int]

type Option func(*Solver)

// WithBound sets the bounding function. Defaults to ZeroBound.
func WithBound(b BoundFunc) Option {
	return func(s *Solver) {
		if b != nil {
			s.bound = b
		}
	}
}

// WithCandidates sets the successor order. Defaults to LIFOCandidates.
func WithCandidates(c CandidateFunc) Option {
	return func(s *Solver) {
		if c != nil {
			s.candidates = c
		}
	}
}

// WithClock replaces the wall clock used to enforce the time budget.
func WithClock(now func() time.Time) Option {
	return func(s *Solver) {
		if now != nil {
			s.now = now
		}
	}
}

// Solver is a reusable branch-and-bound search. It is not safe for concurrent
// use; run one Solver per goroutine.
type Solver struct {
	bound      BoundFunc
	candidates CandidateFunc
	now        func() time.Time

	g         graph.Graph
	deadline  time.Time
	searched  bool
	exhausted bool
	found     bool
	bestTour  []int
	bestCost  float64
	nodes     int
}

func New(opts ...Option) *Solver {
	s := &Solver{
		bound:      ZeroBound,
		candidates: LIFOCandidates,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search looks for the cheapest circuit starting and ending at vertex 0 in g.
// When timeLimit elapses the search unwinds and keeps the best circuit found
// so far. A non-positive timeLimit leaves the solver without any result.
func (s *Solver) Search(g graph.Graph, timeLimit time.Duration) {
	s.reset()
	if timeLimit <= 0 || g == nil {
		return
	}

	s.g = g
	s.searched = true
	s.deadline = s.now().Add(timeLimit)

	n := g.VertexCount()
	if n == 0 {
		return
	}

	path := make([]int, 1, n)
	path[0] = 0
	unvisited := make([]int, 0, n-1)
	for v := 1; v < n; v++ {
		unvisited = append(unvisited, v)
	}

	s.branch(path, unvisited, 0)
}

func (s *Solver) reset() {
	s.g = nil
	s.searched = false
	s.exhausted = false
	s.found = false
	s.bestTour = nil
	s.bestCost = math.Inf(1)
	s.nodes = 0
}

func (s *Solver) branch(path []int, unvisited []int, cost float64) {
	if s.exhausted {
		return
	}
	if s.now().After(s.deadline) {
		s.exhausted = true
		return
	}
	s.nodes++

	current := path[len(path)-1]

	if len(unvisited) == 0 {
		if !s.g.IsArc(current, 0) {
			return
		}
		total := cost + s.g.Cost(current, 0)
		if total < s.bestCost {
			s.bestCost = total
			s.bestTour = append(s.bestTour[:0], path...)
			s.found = true
		}
		return
	}

	if cost+s.bound(s.g, path, unvisited) >= s.bestCost {
		return
	}

	for next := range s.candidates(s.g, path, unvisited) {
		rest := make([]int, 0, len(unvisited)-1)
		for _, v := range unvisited {
			if v != next {
				rest = append(rest, v)
			}
		}
		s.branch(append(path, next), rest, cost+s.g.Cost(current, next))
		if s.exhausted {
			return
		}
	}
}

// Solution returns the i-th vertex of the best circuit, or NoVertex if no
// circuit is known or i is out of range.
func (s *Solver) Solution(i int) int {
	if !s.found || i < 0 || i >= len(s.bestTour) {
		return NoVertex
	}
	return s.bestTour[i]
}

// SolutionCost returns the cost of the best circuit, or graph.NoCost if none
// is known.
func (s *Solver) SolutionCost() float64 {
	if !s.found {
		return graph.NoCost
	}
	return s.bestCost
}

// Tour returns a copy of the best circuit without the closing vertex.
func (s *Solver) Tour() []int {
	if !s.found {
		return nil
	}
	return append([]int(nil), s.bestTour...)
}

// Searched reports whether the last Search call actually ran. It separates
// "no budget given" from "no Hamiltonian circuit exists".
func (s *Solver) Searched() bool { return s.searched }

// BudgetExhausted reports whether the last search was cut short by its time
// limit, in which case the solution may be suboptimal.
func (s *Solver) BudgetExhausted() bool { return s.exhausted }

// Nodes returns the number of search nodes expanded by the last search.
func (s *Solver) Nodes() int { return s.nodes }

// SolveCircuit runs an exhaustive search over g and returns the closed circuit
// (0, ..., 0) with its cost. It returns nil and graph.NoCost when no circuit was
// found within timeLimit.
func SolveCircuit(g graph.Graph, timeLimit time.Duration) ([]int, float64) {
	s := New()
	s.Search(g, timeLimit)

	tour := s.Tour()
	if tour == nil {
		return nil, graph.NoCost
	}
	return append(tour, 0), s.SolutionCost()
}

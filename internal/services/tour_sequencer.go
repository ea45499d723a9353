package services

import (
	"context"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/graph"
	"delivery-tour-service/internal/platform/obs"
	"delivery-tour-service/internal/tsp"
	"iter"
	"math"
	"time"
)

const (
	DefaultPermutationLimit = 8
	DefaultSearchBudget     = 10 * time.Second
)

// Sequence is a visiting order over the stops of a ReducedGraph.
// Order starts and ends with the warehouse (stop 0). Times[k] is the
// departure time for k == 0, the delivery time for deliveries and the
// return time for the final warehouse entry.
type Sequence struct {
	Order           []int
	Times           []time.Time
	LengthMeters    float64
	BudgetExhausted bool
}

// TourSequencer picks the shortest stop order that meets every time window.
// Up to PermutationLimit deliveries are sequenced by exhaustive enumeration;
// larger tours use branch-and-bound within SearchBudget.
type TourSequencer struct {
	Schedule         Schedule
	PermutationLimit int
	SearchBudget     time.Duration
	// Clock drives the search budget. Defaults to time.Now.
	Clock func() time.Time
}

func NewTourSequencer(schedule Schedule) *TourSequencer {
	return &TourSequencer{
		Schedule:         schedule,
		PermutationLimit: DefaultPermutationLimit,
		SearchBudget:     DefaultSearchBudget,
	}
}

// Sequence returns the shortest feasible order over rg for the given day.
// Among equally short orders the first in lexicographic stop order wins.
func (s *TourSequencer) Sequence(ctx context.Context, rg *ReducedGraph, day time.Time) (_ *Sequence, err error) {
	defer obs.Time(ctx, "tour_sequencer.Sequence")(&err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	depart := s.Schedule.DepartAt(day)
	n := rg.VertexCount()
	if n <= 1 {
		return &Sequence{Order: []int{0}, Times: []time.Time{depart}}, nil
	}

	for i := 1; i < n; i++ {
		if !rg.IsArc(0, i) || !rg.IsArc(i, 0) {
			stop := rg.Stop(i)
			return nil, domain.NewComputingError(domain.ErrUnreachableStop,
				"delivery %s at intersection %d", stop.Delivery.ID, stop.IntersectionID)
		}
	}

	if n-1 <= s.PermutationLimit {
		return s.enumerate(rg, day)
	}
	return s.branchAndBound(rg, day)
}

// next returns the time the delivery man leaves stop `to` after riding the
// leg from `from` and, for deliveries, the time the delivery is made.
// ok is false when the leg is missing or the delivery would be late.
func (s *TourSequencer) next(rg *ReducedGraph, from, to int, ready, day time.Time) (at, leave time.Time, ok bool) {
	leg, ok := rg.Leg(from, to)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	arrival := ready.Add(s.Schedule.LegTravelTime(leg.Segments))

	stop := rg.Stop(to)
	if stop.IsWarehouse() {
		return arrival, arrival, true
	}
	at, ok = s.Schedule.Arrive(*stop.Delivery, day, arrival)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return at, at.Add(s.Schedule.DeliveryTime), true
}

// timeline replays order (which must include the closing warehouse) and
// returns the Times of a Sequence.
func (s *TourSequencer) timeline(rg *ReducedGraph, order []int, day time.Time) ([]time.Time, bool) {
	ready := s.Schedule.DepartAt(day)
	times := make([]time.Time, 0, len(order))
	times = append(times, ready)
	for k := 1; k < len(order); k++ {
		at, leave, ok := s.next(rg, order[k-1], order[k], ready, day)
		if !ok {
			return nil, false
		}
		times = append(times, at)
		ready = leave
	}
	return times, true
}

type permutationSearch struct {
	s   *TourSequencer
	rg  *ReducedGraph
	day time.Time

	path  []int
	times []time.Time
	used  []bool

	bestOrder  []int
	bestTimes  []time.Time
	bestLength float64
}

// enumerate walks every permutation of the deliveries in lexicographic order.
// A prefix is dropped when it is already late or not shorter than the best
// complete order, neither of which can change the result.
func (s *TourSequencer) enumerate(rg *ReducedGraph, day time.Time) (*Sequence, error) {
	n := rg.VertexCount()
	depart := s.Schedule.DepartAt(day)
	p := &permutationSearch{
		s:          s,
		rg:         rg,
		day:        day,
		path:       append(make([]int, 0, n+1), 0),
		times:      append(make([]time.Time, 0, n+1), depart),
		used:       make([]bool, n),
		bestLength: math.Inf(1),
	}
	p.used[0] = true
	p.visit(0, depart)

	if p.bestOrder == nil {
		return nil, domain.NewComputingError(domain.ErrInfeasibleTimeWindow,
			"%d deliveries, every order is late or disconnected", n-1)
	}
	return &Sequence{Order: p.bestOrder, Times: p.bestTimes, LengthMeters: p.bestLength}, nil
}

func (p *permutationSearch) visit(length float64, ready time.Time) {
	n := p.rg.VertexCount()
	current := p.path[len(p.path)-1]

	if len(p.path) == n {
		closing, ok := p.rg.Leg(current, 0)
		if !ok {
			return
		}
		total := length + closing.LengthMeters
		if total >= p.bestLength {
			return
		}
		back, _, _ := p.s.next(p.rg, current, 0, ready, p.day)
		p.bestLength = total
		p.bestOrder = append(append(p.bestOrder[:0], p.path...), 0)
		p.bestTimes = append(append(p.bestTimes[:0], p.times...), back)
		return
	}

	for v := 1; v < n; v++ {
		if p.used[v] {
			continue
		}
		leg, ok := p.rg.Leg(current, v)
		if !ok || length+leg.LengthMeters >= p.bestLength {
			continue
		}
		at, leave, ok := p.s.next(p.rg, current, v, ready, p.day)
		if !ok {
			continue
		}

		p.used[v] = true
		p.path = append(p.path, v)
		p.times = append(p.times, at)

		p.visit(length+leg.LengthMeters, leave)

		p.path = p.path[:len(p.path)-1]
		p.times = p.times[:len(p.times)-1]
		p.used[v] = false
	}
}

// branchAndBound runs the generic circuit solver with successors filtered by
// time-window feasibility.
func (s *TourSequencer) branchAndBound(rg *ReducedGraph, day time.Time) (*Sequence, error) {
	budget := s.SearchBudget
	if budget <= 0 {
		budget = DefaultSearchBudget
	}

	opts := []tsp.Option{
		tsp.WithBound(tsp.MinInboundBound),
		tsp.WithCandidates(s.feasibleCandidates(rg, day)),
	}
	if s.Clock != nil {
		opts = append(opts, tsp.WithClock(s.Clock))
	}
	solver := tsp.New(opts...)
	solver.Search(rg, budget)

	tour := solver.Tour()
	if tour == nil {
		if solver.BudgetExhausted() {
			return nil, domain.NewComputingError(domain.ErrInfeasibleTimeWindow,
				"no feasible order found within %s", budget)
		}
		return nil, domain.NewComputingError(domain.ErrInfeasibleTimeWindow,
			"%d deliveries, every order is late or disconnected", rg.VertexCount()-1)
	}

	order := append(tour, 0)
	times, ok := s.timeline(rg, order, day)
	if !ok {
		return nil, domain.NewComputingError(domain.ErrInfeasibleTimeWindow,
			"solver returned a late order %v", order)
	}

	return &Sequence{
		Order:           order,
		Times:           times,
		LengthMeters:    solver.SolutionCost(),
		BudgetExhausted: solver.BudgetExhausted(),
	}, nil
}

// feasibleCandidates yields, in ascending order, the successors that can be
// reached before their window closes.
func (s *TourSequencer) feasibleCandidates(rg *ReducedGraph, day time.Time) tsp.CandidateFunc {
	return func(g graph.Graph, path []int, unvisited []int) iter.Seq[int] {
		return func(yield func(int) bool) {
			ready := s.Schedule.DepartAt(day)
			for k := 1; k < len(path); k++ {
				_, leave, ok := s.next(rg, path[k-1], path[k], ready, day)
				if !ok {
					return
				}
				ready = leave
			}

			current := path[len(path)-1]
			for next := range tsp.AscendingCandidates(g, path, unvisited) {
				if _, _, ok := s.next(rg, current, next, ready, day); !ok {
					continue
				}
				if !yield(next) {
					return
				}
			}
		}
	}
}

package services

import (
	"delivery-tour-service/internal/domain"
	"fmt"
	"slices"
	"strings"
	"time"
)

// TourTimeCompiler turns a stop order into a ComputedTour: the physical
// route as one segment list plus the time of every delivery.
type TourTimeCompiler struct {
	Schedule Schedule
}

// Compile expands seq over rg. Times are recomputed from the legs, so the
// result does not depend on seq.Times. A delivery that cannot be made on time
// is left out and reported as ErrDeliveriesNotOnRoute.
func (c *TourTimeCompiler) Compile(request *domain.TourRequest, rg *ReducedGraph, seq *Sequence, day time.Time) (*domain.ComputedTour, error) {
	if len(seq.Order) == 0 || seq.Order[0] != 0 {
		return nil, fmt.Errorf("compile tour %q: order must start at the warehouse", request.ID)
	}

	depart := c.Schedule.DepartAt(day)
	tour := &domain.ComputedTour{
		TourID:          request.ID,
		DepartAt:        depart,
		Deliveries:      make([]domain.ComputedDelivery, 0, len(request.Deliveries)),
		Vertices:        []int64{rg.Stop(0).IntersectionID},
		BudgetExhausted: seq.BudgetExhausted,
	}

	at := depart
	for k := 1; k < len(seq.Order); k++ {
		from, to := seq.Order[k-1], seq.Order[k]
		leg, ok := rg.Leg(from, to)
		if !ok {
			return nil, fmt.Errorf("compile tour %q: no leg from stop %d to stop %d", request.ID, from, to)
		}

		at = at.Add(c.Schedule.LegTravelTime(leg.Segments))
		tour.Route = append(tour.Route, leg.Segments...)
		tour.Vertices = append(tour.Vertices, leg.Vertices[1:]...)
		tour.LengthMeters += leg.LengthMeters

		stop := rg.Stop(to)
		if stop.IsWarehouse() {
			continue
		}
		t, ok := c.Schedule.Arrive(*stop.Delivery, day, at)
		if !ok {
			continue
		}
		tour.Deliveries = append(tour.Deliveries, domain.ComputedDelivery{
			Request:    *stop.Delivery,
			Time:       t,
			RouteIndex: len(tour.Route),
		})
		at = t.Add(c.Schedule.DeliveryTime)
	}
	tour.ReturnAt = at

	if err := checkDelivered(request, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// CompileRoute recomputes a tour from a raw route given as intersection IDs,
// starting at the warehouse. Each delivery is made at the first visit of its
// intersection where its window has not closed yet, waiting if the window has
// not opened. Deliveries sharing an intersection are made in window order.
func (c *TourTimeCompiler) CompileRoute(request *domain.TourRequest, m *domain.RoadMap, vertices []int64, day time.Time) (*domain.ComputedTour, error) {
	warehouse, err := m.Warehouse()
	if err != nil {
		return nil, err
	}
	if len(vertices) == 0 || vertices[0] != warehouse {
		return nil, fmt.Errorf("compile route %q: route must start at warehouse %d", request.ID, warehouse)
	}

	pending := make(map[int64][]domain.DeliveryRequest)
	for _, d := range request.SortedDeliveries() {
		pending[d.IntersectionID] = append(pending[d.IntersectionID], d)
	}
	for v := range pending {
		slices.SortStableFunc(pending[v], func(a, b domain.DeliveryRequest) int {
			return a.TimeWindow - b.TimeWindow
		})
	}

	depart := c.Schedule.DepartAt(day)
	tour := &domain.ComputedTour{
		TourID:     request.ID,
		DepartAt:   depart,
		Deliveries: make([]domain.ComputedDelivery, 0, len(request.Deliveries)),
		Vertices:   slices.Clone(vertices),
	}

	at := depart
	for k, v := range vertices {
		if k > 0 {
			seg, ok := m.Segment(vertices[k-1], v)
			if !ok {
				return nil, fmt.Errorf("compile route %q: no segment from %d to %d", request.ID, vertices[k-1], v)
			}
			at = at.Add(c.Schedule.TravelTime(seg.LengthMeters))
			tour.Route = append(tour.Route, seg)
			tour.LengthMeters += seg.LengthMeters
		}

		remaining := pending[v][:0]
		for _, d := range pending[v] {
			t, ok := c.Schedule.Arrive(d, day, at)
			if !ok {
				remaining = append(remaining, d)
				continue
			}
			tour.Deliveries = append(tour.Deliveries, domain.ComputedDelivery{
				Request:    d,
				Time:       t,
				RouteIndex: len(tour.Route),
			})
			at = t.Add(c.Schedule.DeliveryTime)
		}
		pending[v] = remaining
	}
	tour.ReturnAt = at

	if err := checkDelivered(request, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

func checkDelivered(request *domain.TourRequest, tour *domain.ComputedTour) error {
	if len(tour.Deliveries) == len(request.Deliveries) {
		return nil
	}

	var missing []string
	for _, d := range request.SortedDeliveries() {
		if _, ok := tour.Delivery(d.ID); !ok {
			missing = append(missing, d.ID.String())
		}
	}
	return domain.NewComputingError(domain.ErrDeliveriesNotOnRoute,
		"tour %q delivers %d of %d requests, missing [%s]",
		request.ID, len(tour.Deliveries), len(request.Deliveries), strings.Join(missing, " "))
}

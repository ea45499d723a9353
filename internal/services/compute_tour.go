package services

import (
	"context"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/platform/obs"
	"delivery-tour-service/internal/ports"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Settings configures a TourComputer.
type Settings struct {
	Schedule         Schedule
	PermutationLimit int
	SearchBudget     time.Duration
	Workers          int
}

func DefaultSettings() Settings {
	return Settings{
		Schedule:         DefaultSchedule(),
		PermutationLimit: DefaultPermutationLimit,
		SearchBudget:     DefaultSearchBudget,
		Workers:          defaultWorkers,
	}
}

// TourComputer chains distance graph build, sequencing and time compilation.
// It holds no per-computation state and is safe for concurrent use.
type TourComputer struct {
	Builder   *DistanceGraphBuilder
	Sequencer *TourSequencer
	Compiler  *TourTimeCompiler
	Workers   int
}

// NewTourComputer wires the three stages from s. cache may be nil.
func NewTourComputer(s Settings, cache ports.PathCache) *TourComputer {
	return &TourComputer{
		Builder: &DistanceGraphBuilder{
			Cache:      cache,
			WindowSize: s.Schedule.WindowSize,
		},
		Sequencer: &TourSequencer{
			Schedule:         s.Schedule,
			PermutationLimit: s.PermutationLimit,
			SearchBudget:     s.SearchBudget,
		},
		Compiler: &TourTimeCompiler{Schedule: s.Schedule},
		Workers:  s.Workers,
	}
}

// ComputeTour computes a tour with default settings and no path cache.
func ComputeTour(ctx context.Context, request *domain.TourRequest, m *domain.RoadMap) (*domain.ComputedTour, error) {
	return NewTourComputer(DefaultSettings(), nil).ComputeTour(ctx, request, m)
}

// ComputeTour returns the shortest tour through every delivery of request
// that meets all time windows. Failures specific to the request are
// *domain.ComputingError values.
func (c *TourComputer) ComputeTour(ctx context.Context, request *domain.TourRequest, m *domain.RoadMap) (_ *domain.ComputedTour, err error) {
	defer obs.Time(ctx, "tour.Compute")(&err)

	if request == nil || m == nil {
		return nil, fmt.Errorf("compute tour: request and road map are required")
	}

	stops, err := TourStops(m, request)
	if err != nil {
		return nil, fmt.Errorf("compute tour %q: %w", request.ID, err)
	}

	if len(request.Deliveries) == 0 {
		depart := c.Compiler.Schedule.DepartAt(request.Day)
		return &domain.ComputedTour{
			TourID:     request.ID,
			DepartAt:   depart,
			ReturnAt:   depart,
			Deliveries: []domain.ComputedDelivery{},
			Vertices:   []int64{stops[0].IntersectionID},
		}, nil
	}

	rg, err := c.Builder.Build(ctx, m, stops)
	if err != nil {
		return nil, fmt.Errorf("compute tour %q: %w", request.ID, err)
	}

	seq, err := c.Sequencer.Sequence(ctx, rg, request.Day)
	if err != nil {
		return nil, fmt.Errorf("compute tour %q: %w", request.ID, err)
	}

	tour, err := c.Compiler.Compile(request, rg, seq, request.Day)
	if err != nil {
		return nil, fmt.Errorf("compute tour %q: %w", request.ID, err)
	}
	return tour, nil
}

// TourResult is the outcome of one request in ComputeTours. Exactly one of
// Tour and Err is set.
type TourResult struct {
	Request *domain.TourRequest
	Tour    *domain.ComputedTour
	Err     error
}

// Found reports whether a tour was computed.
func (r TourResult) Found() bool { return r.Err == nil && r.Tour != nil }

// ComputeTours computes independent tour requests in parallel over the same
// road map. A failed request is reported in its TourResult and does not stop
// the others; only context cancellation aborts the batch. Results keep the
// order of requests.
func (c *TourComputer) ComputeTours(ctx context.Context, requests []*domain.TourRequest, m *domain.RoadMap) (_ []TourResult, err error) {
	defer obs.Time(ctx, "tour.ComputeAll")(&err)

	workers := c.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]TourResult, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tour, err := c.ComputeTour(gctx, req, m)
			results[i] = TourResult{Request: req, Tour: tour, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute tours: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compute tours: %w", err)
	}
	return results, nil
}

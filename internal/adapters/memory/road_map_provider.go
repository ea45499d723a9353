package memory

import (
	"context"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/ports"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// RoadMapProvider serves road maps held in memory, e.g. parsed from a seed
// file at startup.
type RoadMapProvider struct {
	m map[string]*domain.RoadMap
}

func NewRoadMapProvider(maps ...*domain.RoadMap) *RoadMapProvider {
	m := make(map[string]*domain.RoadMap, len(maps))
	for _, rm := range maps {
		m[rm.ID()] = rm
	}
	return &RoadMapProvider{m: m}
}

func (p *RoadMapProvider) LoadRoadMap(ctx context.Context, mapID string) (*domain.RoadMap, error) {
	rm, ok := p.m[mapID]
	if !ok {
		return nil, fmt.Errorf("load road map %q: %w", mapID, ports.ErrRoadMapNotFound)
	}

	return rm, nil
}

// TourRequestRepository keeps tour requests in memory. Stored requests are
// copied in and out so callers never share them.
type TourRequestRepository struct {
	mu       sync.RWMutex
	requests map[domain.TourID]*domain.TourRequest
}

func NewTourRequestRepository(requests ...*domain.TourRequest) *TourRequestRepository {
	r := &TourRequestRepository{requests: make(map[domain.TourID]*domain.TourRequest, len(requests))}
	for _, req := range requests {
		r.Put(req)
	}
	return r
}

// Put stores or replaces a tour request.
func (r *TourRequestRepository) Put(req *domain.TourRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = clone(req)
}

func (r *TourRequestRepository) ListTourRequests(ctx context.Context) ([]*domain.TourRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.TourRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, clone(req))
	}
	slices.SortFunc(out, func(a, b *domain.TourRequest) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out, nil
}

func (r *TourRequestRepository) GetTourRequest(ctx context.Context, id domain.TourID) (*domain.TourRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("get tour request %q: %w", id, ports.ErrTourRequestNotFound)
	}
	return clone(req), nil
}

func clone(req *domain.TourRequest) *domain.TourRequest {
	c := *req
	c.Deliveries = slices.Clone(req.Deliveries)
	return &c
}

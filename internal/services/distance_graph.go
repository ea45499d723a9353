package services

import (
	"context"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/graph"
	"delivery-tour-service/internal/platform/obs"
	"delivery-tour-service/internal/ports"
	"fmt"
	"log"
	"time"
)

// A place visited by a tour. The warehouse stop has no Delivery.
type Stop struct {
	IntersectionID int64
	Delivery       *domain.DeliveryRequest
}

func (s Stop) IsWarehouse() bool { return s.Delivery == nil }

// Leg is the shortest road path between two stops.
type Leg struct {
	LengthMeters float64
	Vertices     []int64
	Segments     []domain.Segment
}

// ReducedGraph is the digraph over a tour's stops whose arcs are shortest
// road paths. Stop 0 is the warehouse. Missing arcs mean the destination is
// unreachable or ruled out by time windows.
type ReducedGraph struct {
	stops []Stop
	legs  [][]*Leg
}

var _ graph.Graph = (*ReducedGraph)(nil)

func (g *ReducedGraph) VertexCount() int { return len(g.stops) }

func (g *ReducedGraph) Cost(i, j int) float64 {
	if l, ok := g.Leg(i, j); ok {
		return l.LengthMeters
	}
	return graph.NoCost
}

func (g *ReducedGraph) IsArc(i, j int) bool {
	_, ok := g.Leg(i, j)
	return ok
}

// Leg returns the path from stop i to stop j.
func (g *ReducedGraph) Leg(i, j int) (*Leg, bool) {
	if i < 0 || i >= len(g.stops) || j < 0 || j >= len(g.stops) || i == j {
		return nil, false
	}
	l := g.legs[i][j]
	return l, l != nil
}

func (g *ReducedGraph) Stop(i int) Stop { return g.stops[i] }

func (g *ReducedGraph) Stops() []Stop { return g.stops }

// TourStops lists the warehouse followed by every delivery of request in ID
// order.
func TourStops(m *domain.RoadMap, request *domain.TourRequest) ([]Stop, error) {
	warehouse, err := m.Warehouse()
	if err != nil {
		return nil, err
	}

	deliveries := request.SortedDeliveries()
	stops := make([]Stop, 0, 1+len(deliveries))
	stops = append(stops, Stop{IntersectionID: warehouse})
	for i := range deliveries {
		stops = append(stops, Stop{IntersectionID: deliveries[i].IntersectionID, Delivery: &deliveries[i]})
	}
	return stops, nil
}

// DistanceGraphBuilder reduces a road map to a ReducedGraph. Cache is
// optional; when set, shortest paths are looked up there before running
// Dijkstra and fresh results are written back.
type DistanceGraphBuilder struct {
	Cache      ports.PathCache
	WindowSize time.Duration
}

// BuildDistanceGraph reduces m over stops with one-hour windows and no cache.
func BuildDistanceGraph(m *domain.RoadMap, stops []Stop) (*ReducedGraph, error) {
	b := &DistanceGraphBuilder{WindowSize: time.Hour}
	return b.Build(context.Background(), m, stops)
}

// Build computes the shortest path between every ordered pair of stops.
// Arcs between two deliveries are left out when the destination window
// closes before the origin window opens. Arcs touching the warehouse are
// always kept.
func (b *DistanceGraphBuilder) Build(ctx context.Context, m *domain.RoadMap, stops []Stop) (_ *ReducedGraph, err error) {
	defer obs.Time(ctx, "distance_graph.Build")(&err)

	if len(stops) == 0 || !stops[0].IsWarehouse() {
		return nil, fmt.Errorf("build distance graph: stop 0 must be the warehouse")
	}
	for i, s := range stops {
		if i > 0 && s.IsWarehouse() {
			return nil, fmt.Errorf("build distance graph: stop %d has no delivery", i)
		}
		if _, ok := m.Intersection(s.IntersectionID); !ok {
			return nil, domain.NewComputingError(domain.ErrUnreachableStop,
				"stop %d references unknown intersection %d", i, s.IntersectionID)
		}
	}

	n := len(stops)
	rg := &ReducedGraph{stops: stops, legs: make([][]*Leg, n)}
	for i := range rg.legs {
		rg.legs[i] = make([]*Leg, n)
	}

	for i, from := range stops {
		targets := make([]int, 0, n-1)
		for j, to := range stops {
			if i == j || b.windowExcludes(from, to) {
				continue
			}
			targets = append(targets, j)
		}
		if len(targets) == 0 {
			continue
		}

		paths := b.pathsFrom(ctx, m, from.IntersectionID, stops, targets)
		for _, j := range targets {
			if leg, ok := paths[stops[j].IntersectionID]; ok {
				rg.legs[i][j] = leg
			}
		}
	}

	return rg, nil
}

// windowExcludes reports whether `to` can never follow `from`: its window
// has already closed when the window of `from` opens.
func (b *DistanceGraphBuilder) windowExcludes(from, to Stop) bool {
	if from.IsWarehouse() || to.IsWarehouse() {
		return false
	}
	size := b.WindowSize
	if size <= 0 {
		size = time.Hour
	}
	toEnd := time.Duration(to.Delivery.TimeWindow)*time.Hour + size
	fromStart := time.Duration(from.Delivery.TimeWindow) * time.Hour
	return toEnd < fromStart
}

// pathsFrom returns the legs from origin to each target intersection that can
// be reached. Cache failures are logged and fall back to Dijkstra.
func (b *DistanceGraphBuilder) pathsFrom(
	ctx context.Context,
	m *domain.RoadMap,
	origin int64,
	stops []Stop,
	targets []int,
) map[int64]*Leg {
	out := make(map[int64]*Leg, len(targets))

	seen := make(map[int64]struct{}, len(targets))
	destinations := make([]int64, 0, len(targets))
	for _, j := range targets {
		d := stops[j].IntersectionID
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}

		// Two stops on the same intersection are joined by an empty path.
		if d == origin {
			out[d] = &Leg{Vertices: []int64{origin}}
			continue
		}
		destinations = append(destinations, d)
	}

	if len(destinations) == 0 {
		return out
	}

	misses := destinations
	if b.Cache != nil {
		hits, err := b.Cache.GetMany(ctx, m.ID(), origin, destinations)
		if err != nil {
			log.Printf("path cache read failed: map=%s origin=%d err=%v", m.ID(), origin, err)
			hits = nil
		}

		misses = make([]int64, 0, len(destinations))
		for _, d := range destinations {
			hit, ok := hits[d]
			if ok {
				if leg, valid := legFromPath(m, hit); valid {
					out[d] = leg
					continue
				}
			}
			misses = append(misses, d)
		}
	}

	if len(misses) == 0 {
		return out
	}

	tree := shortestPaths(m, origin)
	fresh := make(map[int64]ports.PathResult, len(misses))
	for _, d := range misses {
		vertices, segments, ok := tree.pathTo(d)
		if !ok {
			continue
		}
		out[d] = &Leg{LengthMeters: tree.dist[d], Vertices: vertices, Segments: segments}
		fresh[d] = ports.PathResult{LengthMeters: tree.dist[d], Vertices: vertices}
	}

	if b.Cache != nil && len(fresh) > 0 {
		if err := b.Cache.PutMany(ctx, m.ID(), origin, fresh); err != nil {
			log.Printf("path cache write failed: map=%s origin=%d err=%v", m.ID(), origin, err)
		}
	}

	return out
}

// legFromPath rebuilds a leg from a cached vertex path. It fails when the
// path no longer matches the road map: a hop has no segment, or the
// segments no longer add up to the cached length.
func legFromPath(m *domain.RoadMap, p ports.PathResult) (*Leg, bool) {
	if len(p.Vertices) < 2 {
		return nil, false
	}
	segments := make([]domain.Segment, 0, len(p.Vertices)-1)
	// Summed in path order, like Dijkstra, so an unchanged map gives the
	// exact cached value.
	length := 0.0
	for k := 1; k < len(p.Vertices); k++ {
		// Segment picks the shortest parallel segment, as Dijkstra does.
		seg, ok := m.Segment(p.Vertices[k-1], p.Vertices[k])
		if !ok {
			return nil, false
		}
		segments = append(segments, seg)
		length += seg.LengthMeters
	}
	if length != p.LengthMeters {
		return nil, false
	}
	return &Leg{
		LengthMeters: length,
		Vertices:     append([]int64(nil), p.Vertices...),
		Segments:     segments,
	}, true
}

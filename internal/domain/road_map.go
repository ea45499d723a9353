package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// NoIntersection marks a missing intersection reference (e.g. no warehouse).
const NoIntersection int64 = -1

// A road intersection. IDs are unique within a RoadMap.
type Intersection struct {
	ID          int64
	Coordinates Coordinates
}

// A directed physical road edge between two intersections.
type Segment struct {
	Name         string
	Origin       int64
	Destination  int64
	LengthMeters float64
}

// RoadMap is an immutable road network snapshot: intersections, directed
// segments and the warehouse the tours start from. It is safe to share
// between concurrent tour computations.
type RoadMap struct {
	id            string
	intersections map[int64]Intersection
	segments      []Segment
	outgoing      map[int64][]Segment
	warehouseID   int64
	bounds        Bounds
}

// NewRoadMap validates and indexes a road network. warehouseID may be
// NoIntersection; Warehouse then reports ErrNoWarehouse.
func NewRoadMap(id string, intersections []Intersection, segments []Segment, warehouseID int64) (*RoadMap, error) {
	m := &RoadMap{
		id:            strings.TrimSpace(id),
		intersections: make(map[int64]Intersection, len(intersections)),
		segments:      make([]Segment, 0, len(segments)),
		outgoing:      make(map[int64][]Segment),
		warehouseID:   NoIntersection,
		bounds:        emptyBounds(),
	}

	for _, in := range intersections {
		if _, ok := m.intersections[in.ID]; ok {
			return nil, fmt.Errorf("new road map: duplicate intersection id=%d", in.ID)
		}
		m.intersections[in.ID] = in
		m.bounds = m.bounds.Extend(in.Coordinates)
	}

	for i, s := range segments {
		if s.LengthMeters < 0 {
			return nil, fmt.Errorf("new road map: segment #%d %d->%d has negative length %v", i+1, s.Origin, s.Destination, s.LengthMeters)
		}
		if _, ok := m.intersections[s.Origin]; !ok {
			return nil, fmt.Errorf("new road map: segment #%d references unknown origin %d", i+1, s.Origin)
		}
		if _, ok := m.intersections[s.Destination]; !ok {
			return nil, fmt.Errorf("new road map: segment #%d references unknown destination %d", i+1, s.Destination)
		}
		m.segments = append(m.segments, s)
		m.outgoing[s.Origin] = append(m.outgoing[s.Origin], s)
	}

	// Stable adjacency order keeps shortest-path ties deterministic.
	for origin := range m.outgoing {
		slices.SortStableFunc(m.outgoing[origin], compareSegments)
	}

	if _, ok := m.intersections[warehouseID]; ok {
		m.warehouseID = warehouseID
	}

	return m, nil
}

func compareSegments(a, b Segment) int {
	switch {
	case a.Destination < b.Destination:
		return -1
	case a.Destination > b.Destination:
		return 1
	case a.LengthMeters < b.LengthMeters:
		return -1
	case a.LengthMeters > b.LengthMeters:
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

func (m *RoadMap) ID() string { return m.id }

// Warehouse returns the intersection tours depart from and return to.
func (m *RoadMap) Warehouse() (int64, error) {
	if m.warehouseID == NoIntersection {
		return NoIntersection, ErrNoWarehouse
	}
	return m.warehouseID, nil
}

func (m *RoadMap) Intersection(id int64) (Intersection, bool) {
	in, ok := m.intersections[id]
	return in, ok
}

func (m *RoadMap) IntersectionCount() int { return len(m.intersections) }

// Intersections returns every intersection ordered by ID.
func (m *RoadMap) Intersections() []Intersection {
	out := make([]Intersection, 0, len(m.intersections))
	for _, in := range m.intersections {
		out = append(out, in)
	}
	slices.SortFunc(out, func(a, b Intersection) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Return all segments in load order. The slice must not be modified.
func (m *RoadMap) Segments() []Segment { return m.segments }

// Return the segments leaving id, ordered by destination then length.
// The slice must not be modified.
func (m *RoadMap) Outgoing(id int64) []Segment { return m.outgoing[id] }

// Segment returns the shortest segment from origin to destination.
func (m *RoadMap) Segment(origin, destination int64) (Segment, bool) {
	for _, s := range m.outgoing[origin] {
		if s.Destination == destination {
			return s, true
		}
	}
	return Segment{}, false
}

// Bounds returns the box enclosing every intersection.
func (m *RoadMap) Bounds() Bounds { return m.bounds }

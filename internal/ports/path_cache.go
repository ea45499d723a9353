package ports

import "context"

// Shortest road path between two intersections.
type PathResult struct {
	LengthMeters float64
	Vertices     []int64
}

// Contract for memoizing shortest paths computed on a road map.
// Keys are scoped by map ID so different road networks never mix.
type PathCache interface {
	// Return cached paths from origin to any of the destinations.
	// Missing entries are simply absent from the map.
	GetMany(ctx context.Context, mapID string, origin int64, destinations []int64) (map[int64]PathResult, error)
	// Store paths from origin, keyed by destination.
	PutMany(ctx context.Context, mapID string, origin int64, results map[int64]PathResult) error
	// Drop every path cached for a map, e.g. after the map is replaced.
	Clear(ctx context.Context, mapID string) error
}

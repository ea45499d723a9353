package ports

import (
	"context"
	"delivery-tour-service/internal/domain"
	"errors"
)

// Returned when no road map is stored under the requested ID.
var ErrRoadMapNotFound = errors.New("road map not found")

// Port: a boundary for loading an already parsed road network.
type RoadMapProvider interface {
	// Load the road map with the given ID, including its warehouse,
	// or ErrRoadMapNotFound.
	LoadRoadMap(ctx context.Context, mapID string) (*domain.RoadMap, error)
}

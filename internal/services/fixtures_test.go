package services

import (
	"delivery-tour-service/internal/domain"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, second, 0, time.UTC)
}

func testID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func seg(origin, destination int64, length float64) domain.Segment {
	return domain.Segment{
		Name:         fmt.Sprintf("Rue %d-%d", origin, destination),
		Origin:       origin,
		Destination:  destination,
		LengthMeters: length,
	}
}

// both returns the segment in each direction.
func both(a, b int64, length float64) []domain.Segment {
	return []domain.Segment{seg(a, b, length), seg(b, a, length)}
}

func newTestMap(t *testing.T, warehouse int64, ids []int64, segments ...[]domain.Segment) *domain.RoadMap {
	t.Helper()

	intersections := make([]domain.Intersection, 0, len(ids))
	for i, id := range ids {
		intersections = append(intersections, domain.Intersection{
			ID:          id,
			Coordinates: domain.Coordinates{Lon: 4.85 + float64(i)*0.001, Lat: 45.75},
		})
	}
	var all []domain.Segment
	for _, s := range segments {
		all = append(all, s...)
	}

	m, err := domain.NewRoadMap("test", intersections, all, warehouse)
	require.NoError(t, err)
	return m
}

func newRequest(id domain.TourID, deliveries ...domain.DeliveryRequest) *domain.TourRequest {
	return &domain.TourRequest{ID: id, Day: testDay, Deliveries: deliveries}
}

func delivery(n int, intersection int64, window int) domain.DeliveryRequest {
	return domain.DeliveryRequest{ID: testID(n), IntersectionID: intersection, TimeWindow: window}
}

// triangleMap: warehouse 1, intersections 2 and 3.
// 1<->2 750m (3min), 2<->3 750m (3min), 1<->3 1250m (5min).
func triangleMap(t *testing.T) *domain.RoadMap {
	return newTestMap(t, 1, []int64{1, 2, 3},
		both(1, 2, 750),
		both(2, 3, 750),
		both(1, 3, 1250),
	)
}

// starMap: warehouse 0 linked to leaves 1..n by 100m two-way streets.
func starMap(t *testing.T, n int) *domain.RoadMap {
	ids := []int64{0}
	var segments [][]domain.Segment
	for i := int64(1); i <= int64(n); i++ {
		ids = append(ids, i)
		segments = append(segments, both(0, i, 100))
	}
	return newTestMap(t, 0, ids, segments...)
}

func buildGraph(t *testing.T, m *domain.RoadMap, request *domain.TourRequest) *ReducedGraph {
	t.Helper()

	stops, err := TourStops(m, request)
	require.NoError(t, err)
	rg, err := BuildDistanceGraph(m, stops)
	require.NoError(t, err)
	return rg
}

package api

import (
	"delivery-tour-service/internal/adapters/memory"
	"delivery-tour-service/internal/api/dto"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/services"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// Warehouse 1; 1<->2 750m, 2<->3 750m, 1<->3 1250m.
func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return testRouterAt(t, func() time.Time { return testDay.Add(6 * time.Hour) })
}

func testRouterAt(t *testing.T, now func() time.Time) http.Handler {
	t.Helper()

	var segments []domain.Segment
	for _, s := range []struct {
		a, b   int64
		length float64
	}{{1, 2, 750}, {2, 3, 750}, {1, 3, 1250}} {
		segments = append(segments,
			domain.Segment{Name: "Rue", Origin: s.a, Destination: s.b, LengthMeters: s.length},
			domain.Segment{Name: "Rue", Origin: s.b, Destination: s.a, LengthMeters: s.length},
		)
	}
	m, err := domain.NewRoadMap("lyon", []domain.Intersection{
		{ID: 1, Coordinates: domain.Coordinates{Lon: 4.83, Lat: 45.76}},
		{ID: 2, Coordinates: domain.Coordinates{Lon: 4.84, Lat: 45.75}},
		{ID: 3, Coordinates: domain.Coordinates{Lon: 4.85, Lat: 45.74}},
	}, segments, 1)
	require.NoError(t, err)

	requests := memory.NewTourRequestRepository(
		&domain.TourRequest{ID: "alice", Day: testDay, Deliveries: []domain.DeliveryRequest{
			{ID: uuid.MustParse("00000000-0000-4000-8000-000000000001"), IntersectionID: 2, TimeWindow: 9},
			{ID: uuid.MustParse("00000000-0000-4000-8000-000000000002"), IntersectionID: 3, TimeWindow: 8},
		}},
		&domain.TourRequest{ID: "bob", Day: testDay, Deliveries: []domain.DeliveryRequest{
			{ID: uuid.MustParse("00000000-0000-4000-8000-000000000003"), IntersectionID: 2, TimeWindow: 6},
		}},
	)

	return NewRouter(Deps{
		Maps:     memory.NewRoadMapProvider(m),
		Requests: requests,
		Computer: services.NewTourComputer(services.DefaultSettings(), nil),
		MapID:    "lyon",
		Now:      now,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := testRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.HealthResponse{
		Status:    dto.HealthOK,
		Service:   "delivery-tour-service",
		MapID:     "lyon",
		MapLoaded: true,
	}, decode[dto.HealthResponse](t, rec))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/tours/zoe", nil)
	req.Header.Set("X-Request-ID", "abc-456")
	rec = httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dto.ErrorResponse{Error: "tour request not found", RequestID: "abc-456"},
		decode[dto.ErrorResponse](t, rec))
}

func TestGetMap(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodGet, "/map", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.MapResponse](t, rec)
	assert.Equal(t, "lyon", res.MapID)
	require.NotNil(t, res.WarehouseID)
	assert.Equal(t, int64(1), *res.WarehouseID)
	assert.Equal(t, 3, res.IntersectionCount)
	assert.Equal(t, 6, res.SegmentCount)
	assert.Equal(t, []float64{4.83, 45.74}, res.BoundsMin)
	assert.Equal(t, []float64{4.85, 45.76}, res.BoundsMax)
}

func TestListTours(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodGet, "/tours", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.ListToursResponse](t, rec)
	require.Len(t, res.Tours, 2)

	alice := res.Tours[0]
	assert.Equal(t, "alice", alice.TourID)
	assert.Equal(t, dto.TourComputed, alice.Status)
	assert.Equal(t, 2750.0, alice.LengthMeters)
	require.Len(t, alice.Deliveries, 2)
	assert.Equal(t, "00000000-0000-4000-8000-000000000002", alice.Deliveries[0].ID)
	assert.Equal(t, testDay.Add(8*time.Hour+5*time.Minute), alice.Deliveries[0].DeliverAt)
	assert.Equal(t, testDay.Add(9*time.Hour), alice.Deliveries[1].DeliverAt)
	assert.Len(t, alice.Route, 3)
	require.NotNil(t, alice.ReturnAt)
	assert.Equal(t, testDay.Add(9*time.Hour+8*time.Minute), *alice.ReturnAt)

	bob := res.Tours[1]
	assert.Equal(t, "bob", bob.TourID)
	assert.Equal(t, dto.TourNoRouteFound, bob.Status)
	assert.Contains(t, bob.Error, "no delivery order satisfies every time window")
	assert.Empty(t, bob.Deliveries)
	assert.Nil(t, bob.DepartAt)
}

func TestGetTour(t *testing.T) {
	h := testRouter(t)

	rec := do(t, h, http.MethodGet, "/tours/alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.TourComputed, decode[dto.TourResponse](t, rec).Status)

	rec = do(t, h, http.MethodGet, "/tours/bob", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, dto.TourNoRouteFound, decode[dto.TourResponse](t, rec).Status)

	rec = do(t, h, http.MethodGet, "/tours/zoe", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComputeAdHocTour(t *testing.T) {
	body := `{
		"tour_id": "carol",
		"deliveries": [
			{"id": "00000000-0000-4000-8000-00000000000a", "intersection_id": 2, "time_window": 8},
			{"intersection_id": 3, "time_window": 8}
		]
	}`
	rec := do(t, testRouter(t), http.MethodPost, "/tours", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.TourResponse](t, rec)
	assert.Equal(t, "carol", res.TourID)
	assert.Len(t, res.Deliveries, 2)
	assert.Equal(t, 2750.0, res.LengthMeters)
	require.NotNil(t, res.DepartAt)
	assert.Equal(t, testDay.Add(8*time.Hour), *res.DepartAt)
}

func TestComputeEmptyTour(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodPost, "/tours", `{"day": "2026-03-05"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.TourResponse](t, rec)
	assert.Equal(t, "adhoc", res.TourID)
	assert.Empty(t, res.Deliveries)
	assert.Empty(t, res.Route)
	require.NotNil(t, res.DepartAt)
	assert.Equal(t, time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC), *res.DepartAt)
}

func TestComputeDayUsesLocalZone(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	h := testRouterAt(t, func() time.Time { return time.Date(2026, 3, 5, 6, 30, 0, 0, paris) })
	want := time.Date(2026, 3, 5, 8, 0, 0, 0, paris)

	for _, body := range []string{`{}`, `{"day": "2026-03-05"}`} {
		rec := do(t, h, http.MethodPost, "/tours", body)
		require.Equal(t, http.StatusOK, rec.Code, body)

		res := decode[dto.TourResponse](t, rec)
		require.NotNil(t, res.DepartAt)
		assert.True(t, want.Equal(*res.DepartAt), "%s: got %s", body, res.DepartAt)
	}
}

func TestComputeRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"unknown field", `{"truck_count": 3}`},
		{"two objects", `{} {}`},
		{"bad day", `{"day": "tomorrow"}`},
		{"bad id", `{"deliveries": [{"id": "nope", "intersection_id": 2, "time_window": 8}]}`},
		{"bad window", `{"deliveries": [{"intersection_id": 2, "time_window": 24}]}`},
	}

	h := testRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/tours", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestComputeUnreachableDelivery(t *testing.T) {
	body := `{"deliveries": [{"intersection_id": 99, "time_window": 8}]}`
	rec := do(t, testRouter(t), http.MethodPost, "/tours", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	res := decode[dto.TourResponse](t, rec)
	assert.Equal(t, dto.TourNoRouteFound, res.Status)
	assert.Contains(t, res.Error, "cannot be reached")
}

func TestUnknownMap(t *testing.T) {
	h := NewRouter(Deps{
		Maps:     memory.NewRoadMapProvider(),
		Requests: memory.NewTourRequestRepository(),
		Computer: services.NewTourComputer(services.DefaultSettings(), nil),
		MapID:    "nowhere",
	})

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	res := decode[dto.HealthResponse](t, rec)
	assert.Equal(t, dto.HealthDegraded, res.Status)
	assert.False(t, res.MapLoaded)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/map", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/tours", "").Code)
}

package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeliveryRequestValidatesWindow(t *testing.T) {
	d, err := NewDeliveryRequest(12, 9)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.Equal(t, int64(12), d.IntersectionID)

	_, err = NewDeliveryRequest(12, 24)
	assert.Error(t, err)
	_, err = NewDeliveryRequest(12, -1)
	assert.Error(t, err)
}

func TestDeliveryRequestWindowStart(t *testing.T) {
	d := DeliveryRequest{TimeWindow: 10}
	day := time.Date(2026, 3, 4, 17, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), d.WindowStart(day))
}

func TestTourRequestLifecycle(t *testing.T) {
	tour := &TourRequest{ID: "courier-1"}

	a, _ := NewDeliveryRequest(1, 8)
	b, _ := NewDeliveryRequest(2, 9)
	require.NoError(t, tour.Add(a))
	require.NoError(t, tour.Add(b))
	assert.Error(t, tour.Add(a), "duplicate id")

	prev, err := tour.SetTimeWindow(b.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, 9, prev)
	assert.Equal(t, 11, tour.Deliveries[1].TimeWindow)

	_, err = tour.SetTimeWindow(b.ID, 30)
	assert.Error(t, err)
	_, err = tour.SetTimeWindow(uuid.New(), 10)
	assert.Error(t, err)

	removed, ok := tour.Remove(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.ID, removed.ID)
	assert.Len(t, tour.Deliveries, 1)

	_, ok = tour.Remove(a.ID)
	assert.False(t, ok)
}

func TestTourRequestSortedDeliveries(t *testing.T) {
	first := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	tour := &TourRequest{Deliveries: []DeliveryRequest{{ID: second}, {ID: first}}}

	sorted := tour.SortedDeliveries()
	assert.Equal(t, first, sorted[0].ID)
	assert.Equal(t, second, sorted[1].ID)
	assert.Equal(t, second, tour.Deliveries[0].ID, "original order is untouched")
}

func TestComputingErrorUnwraps(t *testing.T) {
	err := NewComputingError(ErrUnreachableStop, "delivery %d", 3)

	assert.ErrorIs(t, err, ErrUnreachableStop)
	assert.Equal(t, "delivery cannot be reached from or return to the warehouse: delivery 3", err.Error())
	assert.True(t, IsComputingError(err))
	assert.True(t, IsComputingError(ErrNoWarehouse))
	assert.False(t, IsComputingError(assert.AnError))
}

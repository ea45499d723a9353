package memory

import (
	"context"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/ports"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadMapProvider(t *testing.T) {
	m, err := domain.NewRoadMap("lyon", []domain.Intersection{{ID: 1}}, nil, 1)
	require.NoError(t, err)

	p := NewRoadMapProvider(m)
	got, err := p.LoadRoadMap(context.Background(), "lyon")
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = p.LoadRoadMap(context.Background(), "paris")
	assert.ErrorIs(t, err, ports.ErrRoadMapNotFound)
}

func TestTourRequestRepository(t *testing.T) {
	d := domain.DeliveryRequest{ID: uuid.New(), IntersectionID: 2, TimeWindow: 8}
	repo := NewTourRequestRepository(
		&domain.TourRequest{ID: "bob", Deliveries: []domain.DeliveryRequest{d}},
		&domain.TourRequest{ID: "alice"},
	)

	list, err := repo.ListTourRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.TourID("alice"), list[0].ID)
	assert.Equal(t, domain.TourID("bob"), list[1].ID)

	// Returned requests are copies.
	list[1].Deliveries[0].TimeWindow = 12
	bob, err := repo.GetTourRequest(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 8, bob.Deliveries[0].TimeWindow)

	repo.Put(&domain.TourRequest{ID: "bob"})
	bob, err = repo.GetTourRequest(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, bob.Deliveries)

	_, err = repo.GetTourRequest(context.Background(), "zoe")
	assert.ErrorIs(t, err, ports.ErrTourRequestNotFound)
}

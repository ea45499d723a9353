package ports

import (
	"context"
	"delivery-tour-service/internal/domain"
	"errors"
)

// Returned when a tour request does not exist.
var ErrTourRequestNotFound = errors.New("tour request not found")

// Port: a boundary for retrieving the delivery requests of each tour.
type TourRequestRepository interface {
	// Retrieve every tour request, ordered by tour ID.
	ListTourRequests(ctx context.Context) ([]*domain.TourRequest, error)
	// Retrieve a single tour request or ErrTourRequestNotFound.
	GetTourRequest(ctx context.Context, id domain.TourID) (*domain.TourRequest, error)
}

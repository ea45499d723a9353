package domain

import (
	"time"

	"github.com/google/uuid"
)

// A delivery request paired with the time it is made on the route.
// RouteIndex is the number of route segments travelled before the delivery.
type ComputedDelivery struct {
	Request    DeliveryRequest
	Time       time.Time
	RouteIndex int
}

// ComputedTour is the result of a tour computation: deliveries in visiting
// order with their times, and the physical route as a segment list.
// It is immutable planning data; changed inputs produce a new tour.
type ComputedTour struct {
	TourID       TourID
	DepartAt     time.Time
	ReturnAt     time.Time
	Deliveries   []ComputedDelivery
	Route        []Segment
	Vertices     []int64
	LengthMeters float64
	// Set when the sequencing search ran out of time and the order may be
	// suboptimal.
	BudgetExhausted bool
}

// Delivery finds the computed delivery for a request ID.
func (t *ComputedTour) Delivery(id uuid.UUID) (ComputedDelivery, bool) {
	for _, d := range t.Deliveries {
		if d.Request.ID == id {
			return d, true
		}
	}
	return ComputedDelivery{}, false
}

package dto

import "time"

type DeliveryRequest struct {
	ID             string `json:"id"`
	IntersectionID int64  `json:"intersection_id"`
	TimeWindow     int    `json:"time_window"`
}

type TourRequest struct {
	TourID     string            `json:"tour_id"`
	Day        string            `json:"day"`
	Deliveries []DeliveryRequest `json:"deliveries"`
}

type SegmentResponse struct {
	Name         string  `json:"name"`
	Origin       int64   `json:"origin"`
	Destination  int64   `json:"destination"`
	LengthMeters float64 `json:"length_meters"`
}

type DeliveryResponse struct {
	ID             string    `json:"id"`
	IntersectionID int64     `json:"intersection_id"`
	TimeWindow     int       `json:"time_window"`
	DeliverAt      time.Time `json:"deliver_at"`
	RouteIndex     int       `json:"route_index"`
}

// Status is TourComputed or TourNoRouteFound. Error explains the latter.
type TourResponse struct {
	TourID          string             `json:"tour_id"`
	Status          string             `json:"status"`
	Error           string             `json:"error,omitempty"`
	DepartAt        *time.Time         `json:"depart_at,omitempty"`
	ReturnAt        *time.Time         `json:"return_at,omitempty"`
	LengthMeters    float64            `json:"length_meters"`
	BudgetExhausted bool               `json:"budget_exhausted"`
	Deliveries      []DeliveryResponse `json:"deliveries"`
	Route           []SegmentResponse  `json:"route"`
}

const (
	TourComputed     = "computed"
	TourNoRouteFound = "no_route_found"
)

type ListToursResponse struct {
	Tours []TourResponse `json:"tours"`
}

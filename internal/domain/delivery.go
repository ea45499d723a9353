package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identifies the tour of one delivery man.
type TourID string

// A delivery to make at an intersection within a one-hour time window.
// TimeWindow h means the interval [h:00, h+1:00).
type DeliveryRequest struct {
	ID             uuid.UUID
	IntersectionID int64
	TimeWindow     int
}

func NewDeliveryRequest(intersectionID int64, timeWindow int) (DeliveryRequest, error) {
	if err := validateTimeWindow(timeWindow); err != nil {
		return DeliveryRequest{}, fmt.Errorf("new delivery request: %w", err)
	}
	return DeliveryRequest{
		ID:             uuid.New(),
		IntersectionID: intersectionID,
		TimeWindow:     timeWindow,
	}, nil
}

func validateTimeWindow(h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("time window must be an hour between 0 and 23, got %d", h)
	}
	return nil
}

// WindowStart returns the start of the time window on the given day.
func (d DeliveryRequest) WindowStart(day time.Time) time.Time {
	return StartOfDay(day).Add(time.Duration(d.TimeWindow) * time.Hour)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// The deliveries assigned to one delivery man for one day.
type TourRequest struct {
	ID         TourID
	Day        time.Time
	Deliveries []DeliveryRequest
}

// Add appends a delivery request. IDs must be unique within the tour.
func (t *TourRequest) Add(d DeliveryRequest) error {
	if err := validateTimeWindow(d.TimeWindow); err != nil {
		return fmt.Errorf("add delivery %s: %w", d.ID, err)
	}
	if t.index(d.ID) >= 0 {
		return fmt.Errorf("add delivery %s: already in tour %q", d.ID, t.ID)
	}
	t.Deliveries = append(t.Deliveries, d)
	return nil
}

// Remove deletes a delivery request and returns it.
func (t *TourRequest) Remove(id uuid.UUID) (DeliveryRequest, bool) {
	i := t.index(id)
	if i < 0 {
		return DeliveryRequest{}, false
	}
	d := t.Deliveries[i]
	t.Deliveries = slices.Delete(t.Deliveries, i, i+1)
	return d, true
}

// SetTimeWindow changes a delivery's time window and returns the previous one.
func (t *TourRequest) SetTimeWindow(id uuid.UUID, h int) (int, error) {
	if err := validateTimeWindow(h); err != nil {
		return 0, fmt.Errorf("set time window %s: %w", id, err)
	}
	i := t.index(id)
	if i < 0 {
		return 0, fmt.Errorf("set time window: delivery %s not in tour %q", id, t.ID)
	}
	prev := t.Deliveries[i].TimeWindow
	t.Deliveries[i].TimeWindow = h
	return prev, nil
}

func (t *TourRequest) index(id uuid.UUID) int {
	return slices.IndexFunc(t.Deliveries, func(d DeliveryRequest) bool { return d.ID == id })
}

// SortedDeliveries returns a copy of the deliveries ordered by ID. Stop
// enumeration follows this order so equal-length tours resolve the same way
// on every run.
func (t *TourRequest) SortedDeliveries() []DeliveryRequest {
	out := slices.Clone(t.Deliveries)
	slices.SortFunc(out, func(a, b DeliveryRequest) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

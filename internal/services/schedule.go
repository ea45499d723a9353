package services

import (
	"delivery-tour-service/internal/domain"
	"math"
	"time"
)

// Schedule holds the timing rules shared by sequencing and time compilation.
type Schedule struct {
	// Hour at which the delivery man leaves the warehouse.
	DepartHour int
	// Travel speed in km/h.
	SpeedKmh float64
	// Time spent at each stop to hand over the package.
	DeliveryTime time.Duration
	// Length of every delivery time window.
	WindowSize time.Duration
}

func DefaultSchedule() Schedule {
	return Schedule{
		DepartHour:   8,
		SpeedKmh:     15,
		DeliveryTime: 5 * time.Minute,
		WindowSize:   time.Hour,
	}
}

// TravelTime returns the whole seconds needed to ride a segment:
// floor(length / (speed / 3.6)).
func (s Schedule) TravelTime(lengthMeters float64) time.Duration {
	metersPerSecond := s.SpeedKmh / 3.6
	return time.Duration(math.Floor(lengthMeters/metersPerSecond)) * time.Second
}

// LegTravelTime sums the floored travel time of each segment.
func (s Schedule) LegTravelTime(segments []domain.Segment) time.Duration {
	var total time.Duration
	for _, seg := range segments {
		total += s.TravelTime(seg.LengthMeters)
	}
	return total
}

// DepartAt returns the warehouse departure time on day.
func (s Schedule) DepartAt(day time.Time) time.Time {
	return domain.StartOfDay(day).Add(time.Duration(s.DepartHour) * time.Hour)
}

// Arrive applies the time window of d to an arrival at time at: early
// arrivals wait for the window to open, arrivals after the window closes are
// rejected. It returns the delivery time.
func (s Schedule) Arrive(d domain.DeliveryRequest, day, at time.Time) (time.Time, bool) {
	start := d.WindowStart(day)
	if at.Before(start) {
		return start, true
	}
	if at.After(start.Add(s.WindowSize)) {
		return at, false
	}
	return at, true
}

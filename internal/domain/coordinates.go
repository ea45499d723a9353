package domain

import "math"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for GeoJSON compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Smallest box enclosing a set of intersections.
type Bounds struct {
	Min Coordinates
	Max Coordinates
}

// Start from an inverted box so the first Extend sets both corners.
func emptyBounds() Bounds {
	return Bounds{
		Min: Coordinates{Lon: math.Inf(1), Lat: math.Inf(1)},
		Max: Coordinates{Lon: math.Inf(-1), Lat: math.Inf(-1)},
	}
}

// Extend grows the box to contain c.
func (b Bounds) Extend(c Coordinates) Bounds {
	return Bounds{
		Min: Coordinates{Lon: math.Min(b.Min.Lon, c.Lon), Lat: math.Min(b.Min.Lat, c.Lat)},
		Max: Coordinates{Lon: math.Max(b.Max.Lon, c.Lon), Lat: math.Max(b.Max.Lat, c.Lat)},
	}
}

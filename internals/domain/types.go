package domain

import (
	"math"
	"time"

	"github.com/thebowwman/tripwatch/internals/geo"
)

type Location struct {
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	Speed    float64   `json:"speed"`
	Heading  float64   `json:"heading,omitempty"`
	Accuracy float64   `json:"accuracy,omitempty"`
	At       time.Time `json:"at"`
}

func (l Location) IsValid() bool {

	return !math.IsNaN(l.Lat) && !math.IsNaN(l.Lng) && l.Lat <= 90 && l.Lat >= -90 && l.Lng <= 180 && l.Lng >= -180

}

func (l Location) Point() geo.GeoPoint {
	return geo.GeoPoint{Lat: l.Lat, Lng: l.Lng}
}

type Trip struct {
	ID                string    `json:"id"`
	GroupID           string    `json:"group_id"`
	Name              string    `json:"name,omitempty"`
	Status            string    `json:"status"`
	StartLocation     string    `json:"start_location"`
	Destination       string    `json:"destination"`
	ToleranceKm       float64   `json:"tolerance_km"`
	NotifyOnDeviation bool      `json:"notify_on_deviation"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Route parses the stored start/destination text into a route segment.
// false means the trip has no usable coordinates and deviation checks are
// skipped for it.
func (t *Trip) Route() (geo.RouteSegment, bool) {
	start := geo.ParseCoordinates(t.StartLocation)
	end := geo.ParseCoordinates(t.Destination)
	if start == nil || end == nil {
		return geo.RouteSegment{}, false
	}
	return geo.RouteSegment{Start: *start, End: *end}, true
}

// Tolerance returns the trip's deviation tolerance, falling back to the
// system default when unset.
func (t *Trip) Tolerance() float64 {
	if t.ToleranceKm > 0 {
		return t.ToleranceKm
	}
	return geo.DefaultToleranceKm
}

const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Package geo implements the route-deviation check used by live trip
// tracking: haversine distance, legacy coordinate-text parsing, and
// point-to-segment deviation measurement. It is pure computation with no
// dependencies and is safe to call from any number of goroutines.
package geo

import "math"

// DefaultToleranceKm is the deviation allowed before a position counts as
// off-route. It absorbs GPS inaccuracy and road curvature versus the
// straight-line route approximation. Tunable per trip.
const DefaultToleranceKm = 5.0

// SentinelDistanceKm is reported when no distance can be computed at all
// (no finite fallback point).
const SentinelDistanceKm = 999.0

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Finite reports whether both coordinates are finite numbers.
func (p GeoPoint) Finite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// Valid reports whether the point is finite and within coordinate range.
func (p GeoPoint) Valid() bool {
	return p.Finite() && p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// RouteSegment is the straight-line approximation of a trip's planned path
// from origin to destination. It may degenerate to a single point.
type RouteSegment struct {
	Start GeoPoint `json:"start"`
	End   GeoPoint `json:"end"`
}

// Path tags which branch produced a DeviationResult.
type Path string

const (
	// PathProjected is the normal case: planar projection onto the segment.
	PathProjected Path = "projected"
	// PathDegenerate means the route had (near) zero length and the distance
	// was measured to the start point.
	PathDegenerate Path = "degenerate"
	// PathFallback means a non-finite input forced a coarser check.
	PathFallback Path = "fallback"
)

// DeviationResult is the verdict for a single position report.
type DeviationResult struct {
	OnRoute    bool    `json:"on_route"`
	DistanceKm float64 `json:"distance_km"`
	Path       Path    `json:"path"`
}

package geo

import "math"

// Segments shorter than this (squared, in degree² units) are treated as a
// single-point route.
const zeroLengthEps = 1e-6

// CheckDeviation reports whether point lies within toleranceKm of the
// straight-line route, and by how much it deviates.
//
// The closest-point projection is planar: latitude/longitude differences are
// treated as 2D coordinates, then the final distance is measured with the
// haversine formula. At trip scale (segments of at most tens of kilometers)
// the planar distortion is far below the tolerance, so the simplification
// does not change verdicts.
//
// Non-finite inputs never panic or error; they degrade to a coarser check.
// A non-positive or NaN tolerance selects DefaultToleranceKm.
func CheckDeviation(point GeoPoint, route RouteSegment, toleranceKm float64) DeviationResult {
	if math.IsNaN(toleranceKm) || toleranceKm <= 0 {
		toleranceKm = DefaultToleranceKm
	}

	if !point.Finite() || !route.Start.Finite() || !route.End.Finite() {
		return fallbackCheck(point, route.Start, toleranceKm)
	}

	dLat := route.End.Lat - route.Start.Lat
	dLng := route.End.Lng - route.Start.Lng
	segLenSq := dLat*dLat + dLng*dLng

	// Single-point "trip": stay near the start.
	if segLenSq < zeroLengthEps {
		d := Haversine(point, route.Start)
		return DeviationResult{OnRoute: d <= toleranceKm, DistanceKm: d, Path: PathDegenerate}
	}

	t := ((point.Lat-route.Start.Lat)*dLat + (point.Lng-route.Start.Lng)*dLng) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	proj := GeoPoint{
		Lat: route.Start.Lat + t*dLat,
		Lng: route.Start.Lng + t*dLng,
	}

	d := Haversine(point, proj)
	return DeviationResult{OnRoute: d <= toleranceKm, DistanceKm: d, Path: PathProjected}
}

// fallbackCheck handles non-finite inputs: measure straight to the route
// start when both it and the point are usable, otherwise report the sentinel.
func fallbackCheck(point, start GeoPoint, toleranceKm float64) DeviationResult {
	if !point.Finite() || !start.Finite() {
		return DeviationResult{OnRoute: false, DistanceKm: SentinelDistanceKm, Path: PathFallback}
	}
	d := Haversine(point, start)
	return DeviationResult{OnRoute: d <= toleranceKm, DistanceKm: d, Path: PathFallback}
}

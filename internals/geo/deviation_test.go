package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// degrees of latitude per kilometer, used to place test points a known
// perpendicular distance from an equatorial route
const degPerKm = 180 / (math.Pi * earthRadiusKm)

func TestCheckDeviationToleranceBoundary(t *testing.T) {
	route := RouteSegment{Start: GeoPoint{Lat: 0, Lng: 0}, End: GeoPoint{Lat: 0, Lng: 1}}

	// 4.95 km due north of the route midpoint. Strictly between the 4.9 and
	// 5.0 thresholds so the verdict does not hinge on last-ulp rounding.
	point := GeoPoint{Lat: 4.95 * degPerKm, Lng: 0.5}

	res := CheckDeviation(point, route, 5.0)
	assert.True(t, res.OnRoute)
	assert.Equal(t, PathProjected, res.Path)
	assert.InDelta(t, 4.95, res.DistanceKm, 1e-6)

	res = CheckDeviation(point, route, 4.9)
	assert.False(t, res.OnRoute)
	assert.InDelta(t, 4.95, res.DistanceKm, 1e-6)
}

func TestCheckDeviationClampsToSegment(t *testing.T) {
	route := RouteSegment{Start: GeoPoint{Lat: 0, Lng: 0}, End: GeoPoint{Lat: 0, Lng: 1}}

	// Projection parameter would be t=2; the distance must be measured to
	// the near endpoint, not to a point on the infinite line.
	point := GeoPoint{Lat: 0, Lng: 2}

	res := CheckDeviation(point, route, DefaultToleranceKm)
	assert.False(t, res.OnRoute)
	assert.Equal(t, PathProjected, res.Path)
	assert.InDelta(t, Haversine(point, route.End), res.DistanceKm, 1e-9)

	// Same on the other side, beyond the start.
	point = GeoPoint{Lat: 0, Lng: -1}
	res = CheckDeviation(point, route, DefaultToleranceKm)
	assert.InDelta(t, Haversine(point, route.Start), res.DistanceKm, 1e-9)
}

func TestCheckDeviationDegenerateRoute(t *testing.T) {
	route := RouteSegment{Start: GeoPoint{Lat: 10, Lng: 10}, End: GeoPoint{Lat: 10, Lng: 10}}
	point := GeoPoint{Lat: 10, Lng: 10.01}

	res := CheckDeviation(point, route, DefaultToleranceKm)
	assert.Equal(t, PathDegenerate, res.Path)
	assert.True(t, res.OnRoute)
	assert.InDelta(t, Haversine(point, route.Start), res.DistanceKm, 1e-9)
	assert.False(t, math.IsNaN(res.DistanceKm))
}

func TestCheckDeviationNonFiniteInputs(t *testing.T) {
	valid := GeoPoint{Lat: 47.25, Lng: -122.0}
	route := RouteSegment{Start: GeoPoint{Lat: 47, Lng: -122}, End: GeoPoint{Lat: 47.5, Lng: -122}}

	tests := []struct {
		name     string
		point    GeoPoint
		route    RouteSegment
		wantPath Path
		sentinel bool
	}{
		{
			name:     "NaN point longitude",
			point:    GeoPoint{Lat: 47.25, Lng: math.NaN()},
			route:    route,
			wantPath: PathFallback,
			sentinel: true,
		},
		{
			name:     "infinite point latitude",
			point:    GeoPoint{Lat: math.Inf(1), Lng: -122},
			route:    route,
			wantPath: PathFallback,
			sentinel: true,
		},
		{
			name:     "NaN route start",
			point:    valid,
			route:    RouteSegment{Start: GeoPoint{Lat: math.NaN(), Lng: -122}, End: route.End},
			wantPath: PathFallback,
			sentinel: true,
		},
		{
			name:     "NaN route end falls back to distance from start",
			point:    valid,
			route:    RouteSegment{Start: route.Start, End: GeoPoint{Lat: math.NaN(), Lng: -122}},
			wantPath: PathFallback,
			sentinel: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckDeviation(tt.point, tt.route, DefaultToleranceKm)
			assert.Equal(t, tt.wantPath, res.Path)
			assert.False(t, math.IsNaN(res.DistanceKm))
			if tt.sentinel {
				assert.False(t, res.OnRoute)
				assert.Equal(t, SentinelDistanceKm, res.DistanceKm)
			} else {
				assert.InDelta(t, Haversine(tt.point, tt.route.Start), res.DistanceKm, 1e-9)
			}
		})
	}
}

func TestCheckDeviationFallbackStillComparesTolerance(t *testing.T) {
	// Point ~27.8 km from the route start, end unusable: the fallback check
	// must still apply the tolerance rather than always flagging off-route.
	point := GeoPoint{Lat: 0.25, Lng: 0}
	route := RouteSegment{Start: GeoPoint{Lat: 0, Lng: 0}, End: GeoPoint{Lat: math.NaN(), Lng: math.NaN()}}

	res := CheckDeviation(point, route, 30.0)
	assert.True(t, res.OnRoute)
	assert.Equal(t, PathFallback, res.Path)

	res = CheckDeviation(point, route, 20.0)
	assert.False(t, res.OnRoute)
}

func TestCheckDeviationProjectionNeverWorseThanEndpoints(t *testing.T) {
	route := RouteSegment{Start: GeoPoint{Lat: 0, Lng: 0}, End: GeoPoint{Lat: 0, Lng: 1}}

	points := []GeoPoint{
		{Lat: 0.02, Lng: 0.3},
		{Lat: -0.05, Lng: 0.9},
		{Lat: 0.01, Lng: 0.0},
		{Lat: 0.1, Lng: 1.2},
	}

	for _, p := range points {
		res := CheckDeviation(p, route, DefaultToleranceKm)
		assert.LessOrEqual(t, res.DistanceKm, Haversine(p, route.Start)+1e-9)
		assert.LessOrEqual(t, res.DistanceKm, Haversine(p, route.End)+1e-9)
	}
}

func TestCheckDeviationDefaultTolerance(t *testing.T) {
	route := RouteSegment{Start: GeoPoint{Lat: 0, Lng: 0}, End: GeoPoint{Lat: 0, Lng: 1}}
	point := GeoPoint{Lat: 4.95 * degPerKm, Lng: 0.5} // within the 5 km default

	// Zero and NaN tolerance both select the default.
	assert.True(t, CheckDeviation(point, route, 0).OnRoute)
	assert.True(t, CheckDeviation(point, route, math.NaN()).OnRoute)
	assert.True(t, CheckDeviation(point, route, -1).OnRoute)
}

func TestCheckDeviationEndToEnd(t *testing.T) {
	start := ParseCoordinates("[47.0, -122.0]")
	dest := ParseCoordinates("[47.5, -122.0]")
	if !assert.NotNil(t, start) || !assert.NotNil(t, dest) {
		return
	}
	route := RouteSegment{Start: *start, End: *dest}

	// On the line between start and destination.
	res := CheckDeviation(GeoPoint{Lat: 47.25, Lng: -122.0}, route, DefaultToleranceKm)
	assert.True(t, res.OnRoute)
	assert.InDelta(t, 0, res.DistanceKm, 1e-9)

	// ~7.6 km east of the route.
	res = CheckDeviation(GeoPoint{Lat: 47.25, Lng: -121.9}, route, DefaultToleranceKm)
	assert.False(t, res.OnRoute)
	assert.InDelta(t, 7.6, res.DistanceKm, 0.2)
}

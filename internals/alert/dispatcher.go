// Package alert turns deviation verdicts into member-facing notifications.
package alert

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thebowwman/tripwatch/internals/auth"
	"github.com/thebowwman/tripwatch/internals/domain"
	"github.com/thebowwman/tripwatch/internals/geo"
	"github.com/thebowwman/tripwatch/internals/hub"
	"github.com/thebowwman/tripwatch/internals/metrics"
)

// Broadcaster fans a message out to a trip's connected clients. Satisfied by
// *hub.TripHub.
type Broadcaster interface {
	Broadcast(msg any, filter func(*hub.WSClient) bool)
}

// Event is the payload broadcast to group members when a traveler goes
// off-route.
type Event struct {
	Type        string    `json:"type"`
	TripID      string    `json:"trip_id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	DistanceKm  float64   `json:"distance_km"`
	ToleranceKm float64   `json:"tolerance_km"`
	At          time.Time `json:"at"`
}

// Dispatcher deduplicates deviation alerts: one alert per off-route
// excursion, re-armed when the traveler comes back within tolerance.
type Dispatcher struct {
	mu       sync.Mutex
	offRoute map[string]bool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{offRoute: make(map[string]bool)}
}

var Default = NewDispatcher()

// Handle consumes a deviation verdict for a trip. It returns true when an
// alert was dispatched.
func (d *Dispatcher) Handle(trip *domain.Trip, loc domain.Location, res geo.DeviationResult, b Broadcaster) bool {
	metrics.DeviationChecks.WithLabelValues(string(res.Path)).Inc()

	if res.OnRoute {
		d.mu.Lock()
		d.offRoute[trip.ID] = false
		d.mu.Unlock()
		return false
	}

	d.mu.Lock()
	already := d.offRoute[trip.ID]
	d.offRoute[trip.ID] = true
	d.mu.Unlock()

	if already {
		// Still on the same excursion; members were told once.
		return false
	}

	log.Warn().
		Str("trip_id", trip.ID).
		Str("group_id", trip.GroupID).
		Float64("distance_km", res.DistanceKm).
		Float64("tolerance_km", trip.Tolerance()).
		Str("path", string(res.Path)).
		Msg("traveler off route")

	if b != nil {
		b.Broadcast(Event{
			Type:        "deviation_alert",
			TripID:      trip.ID,
			Lat:         loc.Lat,
			Lng:         loc.Lng,
			DistanceKm:  res.DistanceKm,
			ToleranceKm: trip.Tolerance(),
			At:          loc.At,
		}, func(c *hub.WSClient) bool { return c.Role() != auth.RoleTraveler })
	}

	metrics.DeviationAlerts.Inc()
	return true
}

// Reset clears the excursion state for a trip, e.g. when it completes.
func (d *Dispatcher) Reset(tripID string) {
	d.mu.Lock()
	delete(d.offRoute, tripID)
	d.mu.Unlock()
}

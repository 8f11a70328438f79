package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thebowwman/tripwatch/internals/alert"
	"github.com/thebowwman/tripwatch/internals/auth"
	"github.com/thebowwman/tripwatch/internals/domain"
	"github.com/thebowwman/tripwatch/internals/geo"
	"github.com/thebowwman/tripwatch/internals/hub"
	"github.com/thebowwman/tripwatch/internals/metrics"
	"github.com/thebowwman/tripwatch/internals/store"
)

type createTripReq struct {
	GroupID           string  `json:"group_id"`
	Name              string  `json:"name,omitempty"`
	StartLocation     string  `json:"start_location"`
	Destination       string  `json:"destination"`
	ToleranceKm       float64 `json:"tolerance_km,omitempty"`
	NotifyOnDeviation bool    `json:"notify_on_deviation"`
	TTLMinutes        int     `json:"ttl_minutes,omitempty"`
}

type createTripResp struct {
	TripID        string `json:"trip_id"`
	TravelerToken string `json:"traveler_token"`
	MemberToken   string `json:"member_token"`
	WSURL         string `json:"ws_url"`
	RouteTracked  bool   `json:"route_tracked"`
}

func handleCreateTrip(c *gin.Context) {
	var req createTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "bad json")
		return
	}
	if req.GroupID == "" {
		c.String(http.StatusBadRequest, "group_id required")
		return
	}

	id := hub.RandID(12)
	hub.GetOrCreateHub(id)

	tolerance := req.ToleranceKm
	if tolerance <= 0 {
		tolerance = defaultToleranceKm
	}

	t := &domain.Trip{
		ID:                id,
		GroupID:           req.GroupID,
		Name:              req.Name,
		Status:            domain.StatusPlanned,
		StartLocation:     req.StartLocation,
		Destination:       req.Destination,
		ToleranceKm:       tolerance,
		NotifyOnDeviation: req.NotifyOnDeviation,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	// Parse before publishing to the store; t is shared once created.
	_, tracked := t.Route()
	store.Trips.Create(t)

	ttl := tokenTTL
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}
	tTok, _ := auth.MakeToken(id, auth.RoleTraveler, ttl)
	mTok, _ := auth.MakeToken(id, auth.RoleMember, ttl)

	c.JSON(http.StatusOK, createTripResp{
		TripID:        id,
		TravelerToken: tTok,
		MemberToken:   mTok,
		WSURL:         "ws://" + c.Request.Host + "/v1/ws/" + id,
		RouteTracked:  tracked,
	})
}

type wsMsg struct {
	Type     string  `json:"type"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Heading  float64 `json:"heading,omitempty"`
	Accuracy float64 `json:"accuracy,omitempty"`
	AtMs     int64   `json:"at_ms,omitempty"`
}

func tsOrNow(ms int64) time.Time {
	if ms > 0 {
		return time.UnixMilli(ms)
	}
	return time.Now()
}

// ingestTravelerLoc stores a traveler position, fans it out to members, and
// runs the deviation check when the trip carries a parseable route. The bool
// reports whether a verdict was produced.
func ingestTravelerLoc(tripID string, loc domain.Location, transport string) (geo.DeviationResult, bool) {
	h := hub.GetOrCreateHub(tripID)
	h.SetTravelerLoc(loc)
	h.Broadcast(struct {
		Type string `json:"type"`
		domain.Location
	}{Type: "traveler_loc", Location: loc}, func(c *hub.WSClient) bool { return c.Role() != auth.RoleTraveler })
	metrics.LocationUpdates.WithLabelValues(transport).Inc()

	trip, ok := store.Trips.Get(tripID)
	if !ok {
		return geo.DeviationResult{}, false
	}

	// First ping starts the trip. The transition happens inside the store's
	// lock; trip here is a private copy.
	if trip.Status == domain.StatusPlanned {
		store.Trips.Activate(tripID)
	}

	if !trip.NotifyOnDeviation {
		return geo.DeviationResult{}, false
	}
	route, ok := trip.Route()
	if !ok {
		// Legacy trips without parseable coordinates: skip, don't fail.
		return geo.DeviationResult{}, false
	}

	res := geo.CheckDeviation(loc.Point(), route, trip.Tolerance())
	alert.Default.Handle(trip, loc, res, h)
	return res, true
}

// Traveler posts last-known location (REST fallback)
func handlePostTravelerLoc(c *gin.Context) {
	claims, err := auth.ParseTokenFromRequest(c.Request)
	if err != nil || claims.Role != auth.RoleTraveler {
		c.String(http.StatusUnauthorized, "unauthorized")
		return
	}
	id := c.Param("tripID")
	if id != claims.TripID {
		c.String(http.StatusForbidden, "trip mismatch")
		return
	}
	var m wsMsg
	if err := c.ShouldBindJSON(&m); err != nil {
		c.String(http.StatusBadRequest, "bad json")
		return
	}
	loc := domain.Location{Lat: m.Lat, Lng: m.Lng, Speed: m.Speed, Heading: m.Heading, Accuracy: m.Accuracy, At: tsOrNow(m.AtMs)}
	if !loc.IsValid() {
		c.String(http.StatusBadRequest, "bad coords")
		return
	}

	res, checked := ingestTravelerLoc(id, loc, "rest")
	if !checked {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, struct {
		Type string `json:"type"`
		geo.DeviationResult
	}{Type: "deviation", DeviationResult: res})
}

// Any role fetches traveler's last-known location
func handleGetTravelerLoc(c *gin.Context) {
	claims, err := auth.ParseTokenFromRequest(c.Request)
	if err != nil {
		c.String(http.StatusUnauthorized, "unauthorized")
		return
	}
	id := c.Param("tripID")
	if id != claims.TripID {
		c.String(http.StatusForbidden, "trip mismatch")
		return
	}
	loc := hub.GetOrCreateHub(id).GetTravelerLoc()
	if loc == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, struct {
		Type string `json:"type"`
		*domain.Location
	}{Type: "traveler_loc", Location: loc})
}

func handleGetTrip(c *gin.Context) {
	claims, err := auth.ParseTokenFromRequest(c.Request)
	if err != nil {
		c.String(http.StatusUnauthorized, "unauthorized")
		return
	}
	id := c.Param("tripID")
	if id != claims.TripID {
		c.String(http.StatusForbidden, "trip mismatch")
		return
	}
	if t, ok := store.Trips.Get(id); ok {
		c.JSON(http.StatusOK, t)
		return
	}
	c.Status(http.StatusNotFound)
}

// Tokens are trip-scoped; holding one for any trip in the group grants
// access to the group's trip list.
func handleListGroupTrips(c *gin.Context) {
	claims, err := auth.ParseTokenFromRequest(c.Request)
	if err != nil {
		c.String(http.StatusUnauthorized, "unauthorized")
		return
	}
	groupID := c.Param("groupID")
	t, ok := store.Trips.Get(claims.TripID)
	if !ok || t.GroupID != groupID {
		c.String(http.StatusForbidden, "group mismatch")
		return
	}
	c.JSON(http.StatusOK, store.Trips.ListByGroup(groupID))
}

package api

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/thebowwman/tripwatch/internals/auth"
	"github.com/thebowwman/tripwatch/internals/domain"
	"github.com/thebowwman/tripwatch/internals/hub"
	"github.com/thebowwman/tripwatch/internals/metrics"
)

func handleWS(c *gin.Context) {
	// 1) Accept JWT from Authorization header OR from `?token=` for browser clients
	claims, err := auth.ParseTokenFromRequest(c.Request)
	if err != nil {
		if tok := c.Query("token"); tok != "" {
			claims, err = auth.ParseToken(tok)
		}
	}
	if err != nil {
		c.String(401, "unauthorized")
		return
	}

	// 2) Trip ID (supports wildcard route /ws/*tripID)
	tripID := strings.TrimPrefix(c.Param("tripID"), "/")
	if tripID == "" || tripID != claims.TripID {
		c.String(403, "trip mismatch")
		return
	}

	// 3) Upgrade to WebSocket
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true}) // TODO: use OriginPatterns in prod
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")
	conn.SetReadLimit(1 << 20)

	// 4) Register client in the per-trip hub
	h := hub.GetOrCreateHub(tripID)
	client := hub.NewWSClient(conn, claims.Role, h)
	h.AddClient(client)
	metrics.ActiveWebSockets.Inc()
	defer func() {
		h.RemoveClient(client)
		metrics.ActiveWebSockets.Dec()
	}()

	// 5) On connect, members get the traveler's last known position
	if claims.Role != auth.RoleTraveler {
		if loc := h.GetTravelerLoc(); loc != nil {
			client.SendJSON("traveler_loc", *loc)
		}
	}

	// 6) Keepalive pings, stopped when the read loop exits
	done := make(chan struct{})
	defer close(done)
	go keepalive(done, conn, 30*time.Second)

	// 7) Read loop: travelers push positions, everyone else just listens
	for {
		mt, data, err := conn.Read(context.Background())
		if err != nil {
			break
		}
		if mt != websocket.MessageText {
			continue
		}
		var m wsMsg
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		if m.Type != "traveler_loc" || claims.Role != auth.RoleTraveler {
			continue
		}
		loc := domain.Location{Lat: m.Lat, Lng: m.Lng, Speed: m.Speed, Heading: m.Heading, Accuracy: m.Accuracy, At: tsOrNow(m.AtMs)}
		if !loc.IsValid() {
			continue
		}
		ingestTravelerLoc(tripID, loc, "ws")
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func keepalive(done <-chan struct{}, p pinger, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = p.Ping(ctx)
			cancel()
		}
	}
}

package hub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/thebowwman/tripwatch/internals/auth"
	"github.com/thebowwman/tripwatch/internals/domain"
)

type TripHub struct {
	ID              string
	mu              sync.RWMutex
	clients         map[*WSClient]struct{}
	lastTravelerLoc *domain.Location
}

func NewHub(id string) *TripHub {

	return &TripHub{
		ID:      id,
		clients: make(map[*WSClient]struct{}),
	}
}

func (h *TripHub) AddClient(c *WSClient) {

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *TripHub) RemoveClient(c *WSClient) {

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *TripHub) Broadcast(msg any, filter func(*WSClient) bool) {

	b, _ := json.Marshal(msg)

	h.mu.RLock()
	for c := range h.clients {

		if filter == nil || filter(c) {
			c.Send(b)
		}
	}

	h.mu.RUnlock()
}

func (h *TripHub) SetTravelerLoc(loc domain.Location) {
	h.mu.Lock()
	h.lastTravelerLoc = &loc
	h.mu.Unlock()
}

func (h *TripHub) GetTravelerLoc() *domain.Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastTravelerLoc
}

// --- lightweight registry (in-memory) ---
var hubs = struct{ sync.Map }{}

func GetOrCreateHub(id string) *TripHub {

	if v, ok := hubs.Load(id); ok {
		return v.(*TripHub)
	}
	h := NewHub(id)
	v, _ := hubs.LoadOrStore(id, h)
	return v.(*TripHub)

}

func RandID(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)

}

type WSClient struct {
	conn *websocket.Conn
	role auth.Role
	hub  *TripHub
	mu   sync.Mutex
}

func NewWSClient(conn *websocket.Conn, role auth.Role, h *TripHub) *WSClient {

	return &WSClient{
		conn: conn,
		role: role,
		hub:  h,
	}
}
func (c *WSClient) Send(b []byte) {

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = c.conn.Write(ctx, websocket.MessageText, b)

}

func (c *WSClient) Role() auth.Role { return c.role }

func (c *WSClient) SendJSON(typ string, loc domain.Location) {

	msg := struct {
		Type string `json:"type"`
		domain.Location
	}{Type: typ, Location: loc}

	b, _ := json.Marshal(msg)
	c.Send(b)
}

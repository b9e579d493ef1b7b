package tracking

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// safeConn wraps a websocket.Conn with a write mutex.
// gorilla/websocket allows one concurrent writer; this enforces that.
type safeConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *safeConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *safeConn) readMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

func (c *safeConn) close() { c.ws.Close() }

// Hub manages WebSocket subscribers per ride. Rider and dispatch frontends
// subscribe to a ride and receive status transitions and driver positions.
type Hub struct {
	mu    sync.RWMutex
	conns map[string][]*safeConn
}

// NewHub creates a tracking hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string][]*safeConn)}
}

// Routes returns a chi.Router for the /ws mount point.
func (h *Hub) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/rides/{id}", h.HandleWS)
	return r
}

// HandleWS upgrades the connection and subscribes it to a ride.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	rideID := chi.URLParam(r, "id")
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	conn := &safeConn{ws: ws}

	h.mu.Lock()
	h.conns[rideID] = append(h.conns[rideID], conn)
	h.mu.Unlock()

	log.Printf("[ws] client connected to ride %s", rideID)

	// Block until the client disconnects
	for {
		if _, _, err := conn.readMessage(); err != nil {
			break
		}
	}

	h.removeConn(rideID, conn)
	conn.close()
	log.Printf("[ws] client disconnected from ride %s", rideID)
}

// BroadcastStatus pushes a status transition to all subscribers of a ride.
func (h *Hub) BroadcastStatus(rideID, status string, at time.Time) {
	h.broadcast(rideID, map[string]any{
		"event":   "status",
		"ride_id": rideID,
		"status":  status,
		"ts":      at.Unix(),
	})
}

// BroadcastLocation pushes a driver position to all subscribers of a ride.
func (h *Hub) BroadcastLocation(rideID string, lat, lng float64) {
	h.broadcast(rideID, map[string]any{
		"event":   "location",
		"ride_id": rideID,
		"lat":     lat,
		"lng":     lng,
		"ts":      time.Now().Unix(),
	})
}

func (h *Hub) broadcast(rideID string, msg map[string]any) {
	h.mu.RLock()
	conns := h.conns[rideID]
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeJSON(msg); err != nil {
			log.Printf("[ws] write error: %v", err)
		}
	}
}

func (h *Hub) removeConn(rideID string, conn *safeConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[rideID]
	for i, c := range conns {
		if c == conn {
			h.conns[rideID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[rideID]) == 0 {
		delete(h.conns, rideID)
	}
}

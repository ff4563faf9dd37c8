package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// AdminRoom is the shared room every connected admin joins in addition to
// their personal room.
const AdminRoom = "admin-room"

// Event is the wire envelope pushed to connected clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one connected websocket peer. A client belongs to one or more
// rooms; delivery is fire-and-forget through the buffered send channel.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub routes events to rooms. Rooms are keyed by user id hex, plus the
// shared AdminRoom. The hub is constructed once at startup and injected
// into whatever needs to push; there is no package-level instance.
type Hub struct {
	log *logrus.Logger

	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, clients := range h.rooms {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// Emit pushes an event to every client in the room. Clients whose send
// buffer is full are skipped; a disconnected recipient reconciles from the
// durable notification list. An empty room is not an error.
func (h *Hub) Emit(room, event string, payload interface{}) error {
	raw, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- raw:
		default:
			h.log.WithField("room", room).Warn("slow websocket client, dropping event")
		}
	}
	return nil
}

// ConnectedRooms returns the number of rooms with at least one client.
func (h *Hub) ConnectedRooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

package gateway

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/pkg/metrics"
)

// sendBuffer bounds how far a client may fall behind before it is
// disconnected. A full buffer means the reader is not draining.
const sendBuffer = 32

// Client is one authenticated socket connection. A single identity may
// hold several connections (multiple tabs); each gets its own Client.
type Client struct {
	UserID   string
	Role     domain.Role
	CampusID string

	send chan *domain.Event

	// closeSlow tears down the underlying connection when the client
	// cannot keep up with its event stream.
	closeSlow func()
}

// Hub tracks connected clients grouped by identity and fans events out
// to them according to each event's audience.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Register adds a client to its identity's room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.UserID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.UserID] = room
	}
	room[c] = struct{}{}
	metrics.GatewayConnections.Inc()
}

// Unregister removes a client. Returns true when this was the identity's
// last open connection, so the caller can clear presence.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.UserID]
	if !ok {
		return false
	}
	if _, ok := room[c]; !ok {
		return false
	}
	delete(room, c)
	metrics.GatewayConnections.Dec()
	if len(room) == 0 {
		delete(h.rooms, c.UserID)
		return true
	}
	return false
}

// Connections reports the number of currently open connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// Dispatch resolves an event's audience and enqueues it to every matching
// client. The staff sentinel never reaches a socket: it is translated
// here into the concrete set of connections it addresses.
func (h *Hub) Dispatch(channel string, event *domain.Event) {
	h.mu.RLock()
	targets := h.resolve(channel, event)
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- event:
			metrics.EventsDeliveredTotal.WithLabelValues(string(event.Type)).Inc()
		default:
			metrics.DeliveryErrorsTotal.WithLabelValues("slow_consumer").Inc()
			h.log.Warn().
				Str("user_id", c.UserID).
				Str("event_type", string(event.Type)).
				Msg("closing slow consumer")
			go c.closeSlow()
		}
	}
}

// resolve must be called with h.mu held.
func (h *Hub) resolve(channel string, event *domain.Event) []*Client {
	if event.UserID != domain.AudienceStaff {
		room := h.rooms[event.UserID]
		targets := make([]*Client, 0, len(room))
		for c := range room {
			targets = append(targets, c)
		}
		return targets
	}

	var targets []*Client
	if channel == domain.PlatformChannel {
		for _, room := range h.rooms {
			for c := range room {
				if c.Role == domain.RoleSuperAdmin {
					targets = append(targets, c)
				}
			}
		}
		return targets
	}

	if !strings.HasPrefix(channel, "campus:") {
		metrics.DeliveryErrorsTotal.WithLabelValues("unknown_channel").Inc()
		return nil
	}
	for _, room := range h.rooms {
		for c := range room {
			if c.CampusID == event.CampusID && c.Role.AtLeast(domain.RoleManager) {
				targets = append(targets, c)
			}
		}
	}
	return targets
}

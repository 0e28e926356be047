package realtime

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event is a broadcast name pushed to every connected socket. Events carry
// no payload: clients refetch authoritative state over REST.
type Event string

const (
	EventClassifiedsChanged Event = "classifieds:changed"
	EventAdminChanged       Event = "admin:changed"
)

// MaxConnectionsPerUser bounds concurrent sockets per authenticated user.
// Exceeding it rejects the new connection; existing ones are kept.
const MaxConnectionsPerUser = 5

var ErrTooManyConnections = errors.New("too many connections")

// Notifier is what mutating services call after commit. Implementations
// never return errors: a missed broadcast degrades to a manual refresh.
type Notifier interface {
	ClassifiedsChanged()
	AdminChanged()
}

// Hub owns the connection set and the per-user accounting map. It is local
// to one process; multi-instance deployments would need an external pub/sub
// backplane, which this design does not provide.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}
	logger  *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// register adds a client, enforcing the per-user cap for authenticated ones.
func (h *Hub) register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.userID != "" {
		set := h.byUser[c.userID]
		if len(set) >= MaxConnectionsPerUser {
			return ErrTooManyConnections
		}
		if set == nil {
			set = make(map[*Client]struct{})
			h.byUser[c.userID] = set
		}
		set[c] = struct{}{}
	}
	h.clients[c] = struct{}{}
	return nil
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if c.userID != "" {
		if set := h.byUser[c.userID]; set != nil {
			delete(set, c)
			if len(set) == 0 {
				delete(h.byUser, c.userID)
			}
		}
	}
	close(c.send)
}

// ConnectionCount reports the live sockets of one user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser[userID])
}

// Broadcast fans an event out to every socket, at most once, best-effort.
// A client whose send buffer is full is dropped rather than blocked on.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	var stale []*Client
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stale {
		if h.logger != nil {
			h.logger.WithField("user_id", c.userID).Warn("dropping slow websocket client")
		}
		h.unregister(c)
		_ = c.conn.Close()
	}
}

func (h *Hub) ClassifiedsChanged() { h.Broadcast(EventClassifiedsChanged) }
func (h *Hub) AdminChanged()       { h.Broadcast(EventAdminChanged) }

var _ Notifier = (*Hub)(nil)

// NopNotifier keeps callers nil-safe when the realtime layer is disabled.
type NopNotifier struct{}

func (NopNotifier) ClassifiedsChanged() {}
func (NopNotifier) AdminChanged()       {}

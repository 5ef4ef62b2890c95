package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/pkg/metrics"
)

// Hub tracks open connections per user and delivers events to them.
// A user may hold several connections at once.
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logger,
	}
}

// Run processes registrations until ctx is cancelled, then closes every connection's send buffer
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		}
	}
}

// Register queues a client for registration. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister queues a client for removal
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	h.metrics.SetRelayConnections(h.countLocked())

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr).
		Int("userConnections", len(h.clients[client.userID])).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}
	h.metrics.SetRelayConnections(h.countLocked())

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
		delete(h.clients, userID)
	}
	h.metrics.SetRelayConnections(0)
}

func (h *Hub) countLocked() int {
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

// Deliver writes event to every local connection of userID and returns how many received it.
// Zero connections is not an error; the event is dropped.
func (h *Hub) Deliver(userID int64, event Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Str("type", event.Type).Msg("Failed to marshal event")
		return 0
	}

	h.mu.RLock()
	conns := h.clients[userID]
	delivered := 0
	var slow []*Client
	for c := range conns {
		select {
		case c.send <- data:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn().Int64("userID", userID).Str("addr", c.remoteAddr).Msg("Send buffer full, dropping connection")
		go h.Unregister(c)
	}

	if delivered == 0 {
		h.metrics.RelayDropped()
		h.logger.Debug().Int64("userID", userID).Str("type", event.Type).Msg("No open connection, event dropped")
		return 0
	}
	h.metrics.RelayDelivered(delivered)
	return delivered
}

// deliverTo writes event to one registered connection
func (h *Hub) deliverTo(c *Client, event Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c.userID][c] {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Notify implements Notifier for a single instance
func (h *Hub) Notify(_ context.Context, userID int64, event Event) error {
	h.Deliver(userID, event)
	return nil
}

// ConnectionCount returns the number of open connections of a user
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// IsOnline reports whether the user has at least one open connection here
func (h *Hub) IsOnline(userID int64) bool {
	return h.ConnectionCount(userID) > 0
}

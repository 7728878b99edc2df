// Package realtime implements the WebSocket chat layer: a hub that tracks
// live authenticated connections and fans broadcasts out to them, and the
// per-connection read/write pumps.
package realtime

import (
	"context"
	"sync"

	"github.com/duedash/duedash/internal/logging"
)

// Hub is the connection registry. It owns the connection-to-username
// mapping exclusively; callers touch it only through Register, Unregister,
// and Broadcast. Structural mutation of the mapping is serialized by the
// mutex, while the send phase of a broadcast runs on a snapshot outside it
// so one slow peer never blocks registry admission.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]string
	logger  logging.Logger
}

// NewHub creates an empty registry.
func NewHub(l logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]string),
		logger:  l.With("module", "hub"),
	}
}

// Register adds a connection under the given username and announces the
// join to every registered connection, the new one included.
func (h *Hub) Register(c *Client, username string) {
	h.mu.Lock()
	c.closed = false
	h.clients[c] = username
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info(context.Background(), "client registered", "username", username, "conn_id", c.id, "total", count)

	h.Broadcast(systemMessage(username+" joined the chat"), nil)
}

// Unregister removes a connection and returns the username it was
// registered under. Calling it again for the same connection is a no-op
// returning ok=false, so disconnect paths may race without harm.
func (h *Hub) Unregister(c *Client) (string, bool) {
	h.mu.Lock()
	username, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.closed = true
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		// Close outside the lock; writePump reacts by closing the conn.
		close(c.send)
		h.logger.Info(context.Background(), "client unregistered", "username", username, "conn_id", c.id, "total", count)
	}
	return username, ok
}

// Broadcast delivers payload to every registered connection except exclude.
// A connection that cannot accept the payload does not stop delivery to the
// others; it is pruned from the registry once the pass is over.
func (h *Hub) Broadcast(payload []byte, exclude *Client) {
	targets := h.snapshot()

	var failed []*Client
	for _, c := range targets {
		if c == exclude {
			continue
		}
		if !h.trySend(c, payload) {
			failed = append(failed, c)
		}
	}

	h.removeFailed(failed)
}

// snapshot copies the current client set so sends happen outside the lock.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// trySend queues payload on the client's send channel without blocking.
// It re-checks registration under the read lock so it never writes to a
// closed channel.
func (h *Hub) trySend(c *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok || c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) removeFailed(failed []*Client) {
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	var channelsToClose []chan []byte
	for _, c := range failed {
		if username, ok := h.clients[c]; ok {
			delete(h.clients, c)
			c.closed = true
			channelsToClose = append(channelsToClose, c.send)
			h.logger.Warn(context.Background(), "client pruned after failed send", "username", username, "conn_id", c.id)
		}
	}
	h.mu.Unlock()

	for _, ch := range channelsToClose {
		close(ch)
	}
}

// Shutdown closes every live connection. Used on server stop.
func (h *Hub) Shutdown() {
	targets := h.snapshot()
	for _, c := range targets {
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
	h.logger.Info(context.Background(), "closed client connections", "count", len(targets))
}

func systemMessage(text string) []byte {
	return []byte("System: " + text)
}

package realtime

import (
	"context"
	"time"

	"github.com/duedash/duedash/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// sendBufferSize bounds the per-connection outbound queue; a peer that
	// falls this far behind is treated as dead and pruned.
	sendBufferSize = 256

	pongWait       = 60 * time.Second
	pingInterval   = 54 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Client is one live websocket connection registered under a username.
// Messages to the peer go through the buffered send channel, drained by a
// single writePump goroutine so per-connection ordering is preserved.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
	id       string
	username string
	closed   bool
	logger   logging.Logger
}

func newClient(conn *websocket.Conn, hub *Hub, username string, l logging.Logger) *Client {
	id := uuid.NewString()
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		hub:      hub,
		id:       id,
		username: username,
		logger:   l.With("conn_id", id, "username", username),
	}
}

// readPump receives inbound frames one at a time and broadcasts each as a
// username-prefixed chat message, excluding this connection. On any
// termination it unregisters the connection and, if it was still
// registered, announces the departure.
func (c *Client) readPump() {
	defer func() {
		username, ok := c.hub.Unregister(c)
		_ = c.conn.Close()
		if ok {
			c.hub.Broadcast(systemMessage(username+" left the chat"), nil)
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn(context.Background(), "websocket read error", "error", err)
			}
			return
		}
		c.hub.Broadcast([]byte(c.username+": "+string(message)), c)
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with periodic pings. It exits when the channel is closed (the hub
// unregistered us) or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn(context.Background(), "websocket write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package realtime

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/logging"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/gorilla/websocket"
)

// Authenticator resolves a raw token to a user. Implemented by
// auth.SessionGuard.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*models.User, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The HTTP API runs with permissive CORS; the websocket endpoint
	// matches it. Authentication happens via the token, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades chat connections. The token arrives as a query
// parameter at connection time and is checked once; a rejected connection
// is closed with a policy-violation code before any registration happens.
type Handler struct {
	hub    *Hub
	guard  Authenticator
	logger logging.Logger
}

// NewHandler builds the websocket endpoint handler.
func NewHandler(hub *Hub, guard Authenticator, l logging.Logger) *Handler {
	return &Handler{hub: hub, guard: guard, logger: l.With("module", "realtime")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	token := r.URL.Query().Get("token")
	user, err := h.guard.Authenticate(r.Context(), token)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket authentication rejected", "error", err)
		h.closePolicyViolation(conn, closeReason(err))
		return
	}

	client := newClient(conn, h.hub, user.Username, h.logger)
	h.hub.Register(client, user.Username)

	go client.writePump()
	go client.readPump()
}

func (h *Handler) closePolicyViolation(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
}

// closeReason renders the close-frame text for each rejection kind.
func closeReason(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, common.ErrTokenWrongType):
		return "invalid token type"
	default:
		return "invalid credentials"
	}
}

package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/gorilla/websocket"
)

// tokenIsUsername treats the raw token as the username, mimicking a guard
// without real JWT plumbing.
type tokenIsUsername struct{}

func (tokenIsUsername) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	if rawToken == "" {
		return nil, common.ErrTokenMalformed
	}
	if rawToken == "expired" {
		return nil, common.ErrTokenExpired
	}
	return &models.User{ID: 1, Username: rawToken}, nil
}

func newChatServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(testLogger())
	srv := httptest.NewServer(NewHandler(hub, tokenIsUsername{}, testLogger()))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialChat(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	return string(msg)
}

func expectPolicyViolationClose(t *testing.T, conn *websocket.Conn, reason string) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("expected close, got a message")
	}
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("expected close error, got %v", err)
	}
	if closeErr.Code != websocket.ClosePolicyViolation {
		t.Fatalf("unexpected close code: %d", closeErr.Code)
	}
	if closeErr.Text != reason {
		t.Fatalf("unexpected close reason: %q", closeErr.Text)
	}
}

func TestHandler_RejectsMissingToken(t *testing.T) {
	srv, hub := newChatServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	expectPolicyViolationClose(t, conn, "invalid credentials")
	if n := len(hub.snapshot()); n != 0 {
		t.Fatalf("rejected connection registered: %d clients", n)
	}
}

func TestHandler_RejectsExpiredToken(t *testing.T) {
	srv, _ := newChatServer(t)

	conn := dialChat(t, srv, "expired")
	expectPolicyViolationClose(t, conn, "token expired")
}

func TestHandler_ChatRoundTrip(t *testing.T) {
	srv, _ := newChatServer(t)

	alice := dialChat(t, srv, "alice")
	if got := readText(t, alice); got != "System: alice joined the chat" {
		t.Fatalf("unexpected message: %q", got)
	}

	bob := dialChat(t, srv, "bob")
	if got := readText(t, bob); got != "System: bob joined the chat" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := readText(t, alice); got != "System: bob joined the chat" {
		t.Fatalf("unexpected message: %q", got)
	}

	if err := alice.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if got := readText(t, bob); got != "alice: hi" {
		t.Fatalf("unexpected message: %q", got)
	}

	// The sender does not hear their own chat message; the next thing
	// alice can receive is bob's reply.
	if err := bob.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if got := readText(t, alice); got != "bob: hello" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestHandler_AnnouncesLeave(t *testing.T) {
	srv, hub := newChatServer(t)

	alice := dialChat(t, srv, "alice")
	readText(t, alice)

	bob := dialChat(t, srv, "bob")
	readText(t, bob)
	readText(t, alice)

	_ = bob.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = bob.Close()

	if got := readText(t, alice); got != "System: bob left the chat" {
		t.Fatalf("unexpected message: %q", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(hub.snapshot()) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 registered client, got %d", len(hub.snapshot()))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

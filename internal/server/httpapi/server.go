// Package httpapi exposes the dueDash HTTP JSON API: signup/login, per-user
// todo management, attachment presigning, health checks, and the WebSocket
// upgrade route.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/duedash/duedash/internal/logging"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/duedash/duedash/internal/server/repositories/todos"
	"github.com/duedash/duedash/internal/server/services"
)

// UserService is the account surface the handlers need.
type UserService interface {
	Register(ctx context.Context, username string, password string) (*models.User, error)
	Login(ctx context.Context, username string, password string) (string, error)
}

// TodoService is the todo surface the handlers need.
type TodoService interface {
	Create(ctx context.Context, userID int64, title string, description *string, dueTime time.Time) (*models.Todo, error)
	ListGrouped(ctx context.Context, userID int64) (*services.GroupedTodos, error)
	Get(ctx context.Context, id int64, userID int64) (*models.Todo, error)
	Update(ctx context.Context, id int64, userID int64, patch *todos.TodoPatch) (*models.Todo, error)
	Complete(ctx context.Context, id int64, userID int64) (*models.Todo, error)
	Delete(ctx context.Context, id int64, userID int64) error
}

// AttachmentService presigns attachment uploads and downloads.
type AttachmentService interface {
	GetUploadURL(ctx context.Context, todoID int64, userID int64) (string, string, error)
	GetDownloadURL(ctx context.Context, todoID int64, userID int64) (string, error)
}

// Authenticator resolves a raw bearer token to a user. Implemented by
// auth.SessionGuard.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*models.User, error)
}

// Server is the HTTP front of the dueDash backend.
type Server struct {
	address     string
	logger      logging.Logger
	guard       Authenticator
	users       UserService
	todos       TodoService
	attachments AttachmentService
	db          *sql.DB
	wsHandler   http.Handler
}

// NewServer wires the HTTP server. wsHandler serves the websocket chat
// endpoint and may be nil in tests that do not exercise it.
func NewServer(address string, l logging.Logger, guard Authenticator, us UserService, ts TodoService, as AttachmentService, db *sql.DB, wsHandler http.Handler) *Server {
	return &Server{
		address:     address,
		logger:      l.With("module", "httpapi"),
		guard:       guard,
		users:       us,
		todos:       ts,
		attachments: as,
		db:          db,
		wsHandler:   wsHandler,
	}
}

// Routes builds the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/db", s.handleHealthDB)

	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)

	mux.HandleFunc("POST /todos", s.requireAuth(s.handleCreateTodo))
	mux.HandleFunc("GET /todos", s.requireAuth(s.handleListTodos))
	mux.HandleFunc("GET /todos/{id}", s.requireAuth(s.handleGetTodo))
	mux.HandleFunc("PATCH /todos/{id}", s.requireAuth(s.handleUpdateTodo))
	mux.HandleFunc("PATCH /todos/{id}/complete", s.requireAuth(s.handleCompleteTodo))
	mux.HandleFunc("DELETE /todos/{id}", s.requireAuth(s.handleDeleteTodo))
	mux.HandleFunc("POST /todos/{id}/attachment", s.requireAuth(s.handleAttachmentUpload))
	mux.HandleFunc("GET /todos/{id}/attachment", s.requireAuth(s.handleAttachmentDownload))

	if s.wsHandler != nil {
		mux.Handle("GET /ws", s.wsHandler)
	}

	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

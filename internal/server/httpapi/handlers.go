package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/duedash/duedash/internal/server/repositories/todos"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to dueDash"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealthDB(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := s.db.QueryRowContext(r.Context(), "SELECT 1").Scan(&one); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		s.logger.Error(r.Context(), "signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info(r.Context(), "user registered", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "User created successfully",
		"username": user.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := s.users.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			writeUnauthorized(w, "Incorrect username or password")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

type todoCreateRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueTime     time.Time `json:"due_time"`
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req todoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.DueTime.IsZero() {
		writeError(w, http.StatusBadRequest, "Title and due_time are required")
		return
	}

	todo, err := s.todos.Create(r.Context(), user.ID, req.Title, req.Description, req.DueTime)
	if err != nil {
		s.logger.Error(r.Context(), "todo create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request, user *models.User) {
	grouped, err := s.todos.ListGrouped(r.Context(), user.ID)
	if err != nil {
		s.logger.Error(r.Context(), "todo list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

// todoID parses the {id} path segment; a non-numeric id reads as 404 since
// no todo can have it.
func todoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	todo, err := s.todos.Get(r.Context(), id, user.ID)
	if err != nil {
		s.respondTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

type todoUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueTime     *time.Time `json:"due_time"`
	Completed   *bool      `json:"completed"`
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	var req todoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := s.todos.Update(r.Context(), id, user.ID, &todos.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		DueTime:     req.DueTime,
		Completed:   req.Completed,
	})
	if err != nil {
		s.respondTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleCompleteTodo(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	todo, err := s.todos.Complete(r.Context(), id, user.ID)
	if err != nil {
		s.respondTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	if err := s.todos.Delete(r.Context(), id, user.ID); err != nil {
		s.respondTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}

func (s *Server) handleAttachmentUpload(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	key, url, err := s.attachments.GetUploadURL(r.Context(), id, user.ID)
	if err != nil {
		s.respondTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"attachment_key": key,
		"upload_url":     url,
	})
}

func (s *Server) handleAttachmentDownload(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	url, err := s.attachments.GetDownloadURL(r.Context(), id, user.ID)
	if err != nil {
		s.respondTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

func (s *Server) respondTodoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	if errors.Is(err, common.ErrNoAttachment) {
		writeError(w, http.StatusNotFound, "Attachment not found")
		return
	}
	s.logger.Error(r.Context(), "todo operation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/duedash/duedash/internal/server/models"
	"github.com/duedash/duedash/internal/server/repositories/repomanager"
	"github.com/duedash/duedash/internal/server/repositories/todos"
)

// GroupedTodos is the shape of the todo listing: completed items, items
// still ahead of their due time, and items past it.
type GroupedTodos struct {
	Completed []*models.Todo `json:"completed"`
	ToBeDone  []*models.Todo `json:"to_be_done"`
	Overdue   []*models.Todo `json:"overdue"`
}

// TodoService implements per-user todo management. All operations take the
// owning user's id and never cross user boundaries.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

// NewTodoService constructs a TodoService over the given repositories.
func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m, now: time.Now}
}

func (s *TodoService) Create(ctx context.Context, userID int64, title string, description *string, dueTime time.Time) (*models.Todo, error) {
	repo := s.repomanager.Todos(s.db)
	todo := &models.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		DueTime:     dueTime,
	}
	return repo.Create(ctx, todo)
}

// ListGrouped returns the user's todos bucketed by status. An item is
// overdue once it is not completed and its due time has passed.
func (s *TodoService) ListGrouped(ctx context.Context, userID int64) (*GroupedTodos, error) {
	repo := s.repomanager.Todos(s.db)

	items, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	grouped := &GroupedTodos{
		Completed: []*models.Todo{},
		ToBeDone:  []*models.Todo{},
		Overdue:   []*models.Todo{},
	}
	for _, item := range items {
		switch {
		case item.Completed:
			grouped.Completed = append(grouped.Completed, item)
		case item.DueTime.Before(now):
			grouped.Overdue = append(grouped.Overdue, item)
		default:
			grouped.ToBeDone = append(grouped.ToBeDone, item)
		}
	}
	return grouped, nil
}

func (s *TodoService) Get(ctx context.Context, id int64, userID int64) (*models.Todo, error) {
	return s.repomanager.Todos(s.db).GetByID(ctx, id, userID)
}

func (s *TodoService) Update(ctx context.Context, id int64, userID int64, patch *todos.TodoPatch) (*models.Todo, error) {
	return s.repomanager.Todos(s.db).Update(ctx, id, userID, patch)
}

// Complete marks a todo as done.
func (s *TodoService) Complete(ctx context.Context, id int64, userID int64) (*models.Todo, error) {
	completed := true
	return s.repomanager.Todos(s.db).Update(ctx, id, userID, &todos.TodoPatch{Completed: &completed})
}

func (s *TodoService) Delete(ctx context.Context, id int64, userID int64) error {
	return s.repomanager.Todos(s.db).Delete(ctx, id, userID)
}

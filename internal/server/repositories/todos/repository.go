package todos

import (
	"context"
	"time"

	"github.com/duedash/duedash/internal/server/models"
)

// TodoPatch carries the fields of a partial update; nil fields are left
// untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	DueTime     *time.Time
	Completed   *bool
}

type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id int64, userID int64) (*models.Todo, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Todo, error)
	Update(ctx context.Context, id int64, userID int64, patch *TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id int64, userID int64) error
	SetAttachmentKey(ctx context.Context, id int64, userID int64, key string) error
}

// Package todos provides the PostgreSQL-backed repository for todo rows.
// Every query is scoped by user_id so one user can never see or touch
// another user's rows.
package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/dbx"
	"github.com/duedash/duedash/internal/server/models"
)

// PostgresRepository implements todo storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const todoColumns = `id, user_id, title, description, due_time, completed, attachment_key, created_at`

func scanTodo(row *sql.Row) (*models.Todo, error) {
	todo := &models.Todo{}
	err := row.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
		&todo.DueTime, &todo.Completed, &todo.AttachmentKey, &todo.CreatedAt)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query :=
		`INSERT INTO todos (user_id, title, description, due_time)
		 VALUES ($1, $2, $3, $4)
		 RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, query,
		todo.UserID, todo.Title, todo.Description, todo.DueTime)

	created, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64, userID int64) (*models.Todo, error) {
	query :=
		`SELECT ` + todoColumns + ` FROM todos
		 WHERE id = $1 AND user_id = $2
		 `

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Todo, error) {
	query :=
		`SELECT ` + todoColumns + ` FROM todos
		 WHERE user_id = $1
		 ORDER BY due_time
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	var result []*models.Todo
	for rows.Next() {
		var item models.Todo
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Description,
			&item.DueTime, &item.Completed, &item.AttachmentKey, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies a partial update; nil patch fields keep the stored value.
func (r *PostgresRepository) Update(ctx context.Context, id int64, userID int64, patch *TodoPatch) (*models.Todo, error) {
	query :=
		`UPDATE todos SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			due_time = COALESCE($5, due_time),
			completed = COALESCE($6, completed)
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, query, id, userID,
		patch.Title, patch.Description, patch.DueTime, patch.Completed)

	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64, userID int64) error {
	query :=
		`DELETE FROM todos
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetAttachmentKey records the object-storage key of an uploaded attachment.
func (r *PostgresRepository) SetAttachmentKey(ctx context.Context, id int64, userID int64, key string) error {
	query :=
		`UPDATE todos SET attachment_key = $3
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

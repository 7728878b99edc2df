package services

import (
	"context"
	"database/sql"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/dbx"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/duedash/duedash/internal/server/repositories/todos"
	"github.com/duedash/duedash/internal/server/repositories/users"
)

// fakeRepoManager vends in-memory repositories regardless of the DBTX passed
// in, so service tests exercise transactions against sqlmock without real SQL.
type fakeRepoManager struct {
	users *fakeUsersRepo
	todos *fakeTodosRepo
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) Todos(db dbx.DBTX) todos.Repository                  { return m.todos }

type fakeUsersRepo struct {
	byUsername map[string]*models.User
	nextID     int64
	createErr  error
	getErr     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byUsername: map[string]*models.User{}, nextID: 1}
}

func (r *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	user.ID = r.nextID
	r.nextID++
	r.byUsername[user.Username] = user
	return user, nil
}

func (r *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	user, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return user, nil
}

type fakeTodosRepo struct {
	byID    map[int64]*models.Todo
	nextID  int64
	listErr error
}

func newFakeTodosRepo() *fakeTodosRepo {
	return &fakeTodosRepo{byID: map[int64]*models.Todo{}, nextID: 1}
}

func (r *fakeTodosRepo) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	todo.ID = r.nextID
	r.nextID++
	r.byID[todo.ID] = todo
	return todo, nil
}

func (r *fakeTodosRepo) GetByID(ctx context.Context, id int64, userID int64) (*models.Todo, error) {
	todo, ok := r.byID[id]
	if !ok || todo.UserID != userID {
		return nil, common.ErrNotFound
	}
	return todo, nil
}

func (r *fakeTodosRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Todo, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var result []*models.Todo
	for id := int64(1); id < r.nextID; id++ {
		todo, ok := r.byID[id]
		if ok && todo.UserID == userID {
			result = append(result, todo)
		}
	}
	return result, nil
}

func (r *fakeTodosRepo) Update(ctx context.Context, id int64, userID int64, patch *todos.TodoPatch) (*models.Todo, error) {
	todo, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = patch.Description
	}
	if patch.DueTime != nil {
		todo.DueTime = *patch.DueTime
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	return todo, nil
}

func (r *fakeTodosRepo) Delete(ctx context.Context, id int64, userID int64) error {
	if _, err := r.GetByID(ctx, id, userID); err != nil {
		return err
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeTodosRepo) SetAttachmentKey(ctx context.Context, id int64, userID int64, key string) error {
	todo, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	todo.AttachmentKey = &key
	return nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/server/models"
	"github.com/duedash/duedash/internal/server/repositories/todos"
)

func newTodoServiceForTest(t *testing.T, repo *fakeTodosRepo) *TodoService {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTodoService(db, &fakeRepoManager{todos: repo})
}

func TestTodoService_ListGrouped(t *testing.T) {
	repo := newFakeTodosRepo()
	svc := newTodoServiceForTest(t, repo)

	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	add := func(title string, due time.Time, completed bool) {
		repo.byID[repo.nextID] = &models.Todo{
			ID: repo.nextID, UserID: 1, Title: title, DueTime: due, Completed: completed,
		}
		repo.nextID++
	}
	// Completed wins over overdue, and an item due exactly now is not yet
	// past its due time.
	add("done early", now.Add(-time.Hour), true)
	add("done late", now.Add(time.Hour), true)
	add("missed", now.Add(-time.Minute), false)
	add("upcoming", now.Add(time.Minute), false)
	add("due exactly now", now, false)

	grouped, err := svc.ListGrouped(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListGrouped error: %v", err)
	}

	titles := func(items []*models.Todo) []string {
		var out []string
		for _, item := range items {
			out = append(out, item.Title)
		}
		return out
	}

	if got := titles(grouped.Completed); len(got) != 2 || got[0] != "done early" || got[1] != "done late" {
		t.Fatalf("unexpected completed bucket: %v", got)
	}
	if got := titles(grouped.Overdue); len(got) != 1 || got[0] != "missed" {
		t.Fatalf("unexpected overdue bucket: %v", got)
	}
	if got := titles(grouped.ToBeDone); len(got) != 2 || got[0] != "upcoming" || got[1] != "due exactly now" {
		t.Fatalf("unexpected to-be-done bucket: %v", got)
	}
}

func TestTodoService_ListGrouped_EmptyBuckets(t *testing.T) {
	svc := newTodoServiceForTest(t, newFakeTodosRepo())

	grouped, err := svc.ListGrouped(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListGrouped error: %v", err)
	}
	// Buckets must serialize as [] rather than null.
	if grouped.Completed == nil || grouped.ToBeDone == nil || grouped.Overdue == nil {
		t.Fatalf("expected empty slices, got %+v", grouped)
	}
}

func TestTodoService_Complete(t *testing.T) {
	repo := newFakeTodosRepo()
	svc := newTodoServiceForTest(t, repo)

	todo, err := svc.Create(context.Background(), 1, "groceries", nil, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Complete(context.Background(), todo.ID, 1)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if !updated.Completed {
		t.Fatal("todo not marked completed")
	}
}

func TestTodoService_UserScoping(t *testing.T) {
	repo := newFakeTodosRepo()
	svc := newTodoServiceForTest(t, repo)

	todo, err := svc.Create(context.Background(), 1, "private", nil, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Get(context.Background(), todo.ID, 2); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	if err := svc.Delete(context.Background(), todo.ID, 2); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}

	title := "renamed"
	if _, err := svc.Update(context.Background(), todo.ID, 2, &todos.TodoPatch{Title: &title}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}

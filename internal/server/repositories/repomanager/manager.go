package repomanager

import (
	"context"
	"database/sql"

	"github.com/duedash/duedash/internal/dbx"
	"github.com/duedash/duedash/internal/server/repositories/todos"
	"github.com/duedash/duedash/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code against *sql.DB or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Todos(db dbx.DBTX) todos.Repository
}

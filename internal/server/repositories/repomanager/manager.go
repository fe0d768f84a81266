package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/qatrack/internal/dbx"
	"github.com/dmitrijs2005/qatrack/internal/server/repositories/issues"
	"github.com/dmitrijs2005/qatrack/internal/server/repositories/screenshots"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Issues(db dbx.DBTX) issues.Repository
	Screenshots(db dbx.DBTX) screenshots.Repository
}

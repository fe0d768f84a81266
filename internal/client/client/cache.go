package client

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/client/migrations"
	"github.com/dmitrijs2005/qatrack/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/qatrack/internal/dbx"
	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Cache persists the last applied sync result in an SQLite file.
type Cache struct {
	db   *sql.DB
	repo func(dbx.DBTX) snapshot.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenCache opens (creating if needed) the cache at dsn and migrates it.
func OpenCache(ctx context.Context, dsn string) (*Cache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{
		db:   db,
		repo: func(tx dbx.DBTX) snapshot.Repository { return snapshot.NewSQLiteRepository(tx) },
	}, nil
}

// Load returns the cached issues and the time they were fetched. An empty
// cache yields no issues and a zero time.
func (c *Cache) Load(ctx context.Context) ([]issue.Issue, time.Time, error) {
	var (
		issues   []issue.Issue
		lastSync time.Time
	)
	err := dbx.WithTx(ctx, c.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		r := c.repo(tx)
		var err error
		if issues, err = r.List(ctx); err != nil {
			return err
		}
		lastSync, err = r.LastSync(ctx)
		return err
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return issues, lastSync, nil
}

// Save replaces the cached view in one transaction.
func (c *Cache) Save(ctx context.Context, issues []issue.Issue, lastSync time.Time) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := c.repo(tx)
		if err := r.ReplaceAll(ctx, issues); err != nil {
			return err
		}
		return r.SetLastSync(ctx, lastSync)
	})
}

func (c *Cache) Close() error {
	return c.db.Close()
}

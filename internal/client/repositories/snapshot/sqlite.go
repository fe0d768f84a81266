package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/dbx"
	"github.com/dmitrijs2005/qatrack/internal/issue"
)

const lastSyncKey = "last_sync"

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, issues []issue.Issue) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_issues`); err != nil {
		return fmt.Errorf("failed to clear cached issues: %w", err)
	}

	for i, it := range issues {
		body, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("failed to encode issue %s: %w", it.ID, err)
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO cached_issues (id, position, body) VALUES (?, ?, ?)`,
			it.ID, i, body)
		if err != nil {
			return fmt.Errorf("failed to cache issue %s: %w", it.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]issue.Issue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM cached_issues ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached issues: %w", err)
	}
	defer rows.Close()

	result := []issue.Issue{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan cached issue: %w", err)
		}
		var it issue.Issue
		if err := json.Unmarshal(body, &it); err != nil {
			return nil, fmt.Errorf("failed to decode cached issue: %w", err)
		}
		result = append(result, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached issues: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) LastSync(ctx context.Context) (time.Time, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, lastSyncKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last sync %q: %w", value, err)
	}
	return t, nil
}

func (r *SQLiteRepository) SetLastSync(ctx context.Context, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastSyncKey, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set last sync: %w", err)
	}
	return nil
}

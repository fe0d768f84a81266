// Package screenshots provides the PostgreSQL-backed repository for
// screenshot rows owned by issues.
package screenshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/dbx"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PostgresRepository implements screenshot storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores one screenshot. A duplicate id maps to
// common.ErrorAlreadyExists and a missing parent issue to common.ErrorNotFound.
func (r *PostgresRepository) Insert(ctx context.Context, s *models.Screenshot) error {
	query := `
		INSERT INTO screenshots (id, issue_id, name, data, type, size, uploaded_at, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.IssueID, s.Name, s.Data, s.Type, s.Size, s.UploadedAt, s.Position)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return common.ErrorAlreadyExists
			case foreignKeyViolation:
				return common.ErrorNotFound
			}
		}
		return fmt.Errorf("insert screenshot: %w", err)
	}
	return nil
}

// ListByIssueID returns the screenshots of one issue, oldest upload first and
// in batch order within one upload.
func (r *PostgresRepository) ListByIssueID(ctx context.Context, issueID string) ([]*models.Screenshot, error) {
	query := `SELECT id, issue_id, name, data, type, size, uploaded_at, position FROM screenshots
		WHERE issue_id = $1 ORDER BY uploaded_at ASC, position ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, issueID)
	if err != nil {
		return nil, fmt.Errorf("select screenshots: %w", err)
	}
	return collect(rows)
}

// ListAll returns every screenshot grouped by issue and ordered by upload
// time inside each group. Used to assemble the issue list in one query.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Screenshot, error) {
	query := `SELECT id, issue_id, name, data, type, size, uploaded_at, position FROM screenshots
		ORDER BY issue_id, uploaded_at ASC, position ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select screenshots: %w", err)
	}
	return collect(rows)
}

// DeleteByIssueID removes every screenshot of an issue and reports how many
// rows were deleted.
func (r *PostgresRepository) DeleteByIssueID(ctx context.Context, issueID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM screenshots WHERE issue_id = $1`, issueID)
	if err != nil {
		return 0, fmt.Errorf("delete screenshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func collect(rows *sql.Rows) ([]*models.Screenshot, error) {
	defer rows.Close()

	result := make([]*models.Screenshot, 0)
	for rows.Next() {
		var s models.Screenshot
		if err := rows.Scan(&s.ID, &s.IssueID, &s.Name, &s.Data, &s.Type, &s.Size, &s.UploadedAt, &s.Position); err != nil {
			return nil, err
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

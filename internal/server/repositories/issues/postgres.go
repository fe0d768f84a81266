// Package issues provides the PostgreSQL-backed repository for issue rows.
package issues

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

const uniqueViolation = "23505"

const selectColumns = `id, title, description, type, severity, status, screen, steps_to_reproduce,
		expected_behavior, actual_behavior, environment, device, os_version, app_version,
		reported_by, assigned_to, notes, created_at, updated_at`

// PostgresRepository implements issue storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(s scanner) (*models.Issue, error) {
	var i models.Issue
	err := s.Scan(
		&i.ID, &i.Title, &i.Description, &i.Type, &i.Severity, &i.Status, &i.Screen, &i.StepsToReproduce,
		&i.ExpectedBehavior, &i.ActualBehavior, &i.Environment, &i.Device, &i.OSVersion, &i.AppVersion,
		&i.ReportedBy, &i.AssignedTo, &i.Notes, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Insert stores a new issue row. A duplicate id yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Insert(ctx context.Context, i *models.Issue) error {
	query := `
		INSERT INTO issues (id, title, description, type, severity, status, screen, steps_to_reproduce,
			expected_behavior, actual_behavior, environment, device, os_version, app_version,
			reported_by, assigned_to, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.ExecContext(ctx, query,
		i.ID, i.Title, i.Description, i.Type, i.Severity, i.Status, i.Screen, i.StepsToReproduce,
		i.ExpectedBehavior, i.ActualBehavior, i.Environment, i.Device, i.OSVersion, i.AppVersion,
		i.ReportedBy, i.AssignedTo, i.Notes, i.CreatedAt, i.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

// GetByID loads a single issue row or returns common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	query := `SELECT ` + selectColumns + ` FROM issues WHERE id = $1`

	i, err := scanIssue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("select issue: %w", err)
	}
	return i, nil
}

// List returns every issue, newest first. Ties on created_at are broken by id
// so the order is stable across calls.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Issue, error) {
	query := `SELECT ` + selectColumns + ` FROM issues ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select issues: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Issue, 0)
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update overwrites every mutable column of an existing row. created_at is
// never touched. Returns common.ErrorNotFound when no row has the id.
func (r *PostgresRepository) Update(ctx context.Context, i *models.Issue) error {
	query := `
		UPDATE issues SET
			title = $2, description = $3, type = $4, severity = $5, status = $6, screen = $7,
			steps_to_reproduce = $8, expected_behavior = $9, actual_behavior = $10,
			environment = $11, device = $12, os_version = $13, app_version = $14,
			reported_by = $15, assigned_to = $16, notes = $17, updated_at = $18
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		i.ID, i.Title, i.Description, i.Type, i.Severity, i.Status, i.Screen,
		i.StepsToReproduce, i.ExpectedBehavior, i.ActualBehavior,
		i.Environment, i.Device, i.OSVersion, i.AppVersion,
		i.ReportedBy, i.AssignedTo, i.Notes, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	return dbx.ExactlyOne(res)
}

// Delete removes the row; screenshots go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	return dbx.ExactlyOne(res)
}

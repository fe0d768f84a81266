package issues

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "title", "description", "type", "severity", "status", "screen", "steps_to_reproduce",
	"expected_behavior", "actual_behavior", "environment", "device", "os_version", "app_version",
	"reported_by", "assigned_to", "notes", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func sampleIssue() *models.Issue {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.Issue{
		ID:               "ISS-1",
		Title:            "Crash on swap",
		Type:             "bug",
		Severity:         "medium",
		Status:           "open",
		Screen:           "Swap Screen (Main)",
		StepsToReproduce: `["open","tap"]`,
		Environment:      "Production",
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
}

func addIssueRow(rows *sqlmock.Rows, i *models.Issue) *sqlmock.Rows {
	return rows.AddRow(
		i.ID, i.Title, i.Description, i.Type, i.Severity, i.Status, i.Screen, i.StepsToReproduce,
		i.ExpectedBehavior, i.ActualBehavior, i.Environment, i.Device, i.OSVersion, i.AppVersion,
		i.ReportedBy, i.AssignedTo, i.Notes, i.CreatedAt, i.UpdatedAt,
	)
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	i := sampleIssue()
	mock.ExpectExec(`INSERT INTO issues \(id, title, .*\) VALUES \(\$1, .*\$19\)`).
		WithArgs(
			i.ID, i.Title, i.Description, i.Type, i.Severity, i.Status, i.Screen, i.StepsToReproduce,
			i.ExpectedBehavior, i.ActualBehavior, i.Environment, i.Device, i.OSVersion, i.AppVersion,
			i.ReportedBy, i.AssignedTo, i.Notes, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), i))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DuplicateID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO issues`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Insert(context.Background(), sampleIssue())
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO issues`).WillReturnError(errors.New("boom"))

	err := repo.Insert(context.Background(), sampleIssue())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert issue")
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := sampleIssue()
	mock.ExpectQuery(`SELECT id, title, .* FROM issues WHERE id = \$1`).
		WithArgs("ISS-1").
		WillReturnRows(addIssueRow(sqlmock.NewRows(columns), want))

	got, err := repo.GetByID(context.Background(), "ISS-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM issues WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_OrdersNewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	older := sampleIssue()
	newer := sampleIssue()
	newer.ID = "ISS-2"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	rows := sqlmock.NewRows(columns)
	addIssueRow(rows, newer)
	addIssueRow(rows, older)

	mock.ExpectQuery(`FROM issues ORDER BY created_at DESC, id DESC`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ISS-2", got[0].ID)
	assert.Equal(t, "ISS-1", got[1].ID)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM issues ORDER BY`).WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM issues ORDER BY`).WillReturnError(errors.New("down"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	i := sampleIssue()
	mock.ExpectExec(`UPDATE issues SET .* updated_at = \$18\s+WHERE id = \$1`).
		WithArgs(
			i.ID, i.Title, i.Description, i.Type, i.Severity, i.Status, i.Screen,
			i.StepsToReproduce, i.ExpectedBehavior, i.ActualBehavior,
			i.Environment, i.Device, i.OSVersion, i.AppVersion,
			i.ReportedBy, i.AssignedTo, i.Notes, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), i))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE issues SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), sampleIssue())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM issues WHERE id = \$1`).WithArgs("ISS-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM issues WHERE id = \$1`).WithArgs("ISS-2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM issues WHERE id = \$1`).WithArgs("ISS-3").WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Delete(context.Background(), "ISS-1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "ISS-2"), common.ErrorNotFound)
	require.Error(t, repo.Delete(context.Background(), "ISS-3"))
	require.NoError(t, mock.ExpectationsWereMet())
}

package screenshots

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

var columns = []string{"id", "issue_id", "name", "data", "type", "size", "uploaded_at", "position"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func shot(id string, at time.Time, pos int) *models.Screenshot {
	return &models.Screenshot{
		ID:         id,
		IssueID:    "ISS-1",
		Name:       id + ".png",
		Data:       "data:image/png;base64,AAAA",
		Type:       "image/png",
		Size:       3,
		UploadedAt: at,
		Position:   pos,
	}
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	s := shot("ss-1", time.Now(), 2)
	mock.ExpectExec(`INSERT INTO screenshots \(id, issue_id, name, data, type, size, uploaded_at, position\)`).
		WithArgs(s.ID, s.IssueID, s.Name, s.Data, s.Type, s.Size, sqlmock.AnyArg(), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "duplicate id", err: &pgconn.PgError{Code: "23505"}, want: common.ErrorAlreadyExists},
		{name: "missing parent", err: &pgconn.PgError{Code: "23503"}, want: common.ErrorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`INSERT INTO screenshots`).WillReturnError(tt.err)
			require.ErrorIs(t, repo.Insert(context.Background(), shot("ss-1", time.Now(), 0)), tt.want)
		})
	}

	repo, mock, db := newRepoWithMock(t)
	defer db.Close()
	mock.ExpectExec(`INSERT INTO screenshots`).WillReturnError(errors.New("boom"))
	err := repo.Insert(context.Background(), shot("ss-1", time.Now(), 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert screenshot")
}

func TestListByIssueID_OldestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b := shot("ss-z", t0, 0), shot("ss-a", t0, 1)

	mock.ExpectQuery(`FROM screenshots\s+WHERE issue_id = \$1 ORDER BY uploaded_at ASC, position ASC, id ASC`).
		WithArgs("ISS-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(a.ID, a.IssueID, a.Name, a.Data, a.Type, a.Size, a.UploadedAt, a.Position).
			AddRow(b.ID, b.IssueID, b.Name, b.Data, b.Type, b.Size, b.UploadedAt, b.Position))

	got, err := repo.ListByIssueID(context.Background(), "ISS-1")
	require.NoError(t, err)
	assert.Equal(t, []*models.Screenshot{a, b}, got)
}

func TestListAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM screenshots\s+ORDER BY issue_id, uploaded_at ASC, position ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByIssueID_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM screenshots`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("ss", "ISS-1", "n", "d", "t", "not-a-number", time.Now(), 0))

	_, err := repo.ListByIssueID(context.Background(), "ISS-1")
	require.Error(t, err)
}

func TestDeleteByIssueID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM screenshots WHERE issue_id = \$1`).
		WithArgs("ISS-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM screenshots WHERE issue_id = \$1`).
		WithArgs("ISS-2").
		WillReturnError(errors.New("boom"))

	n, err := repo.DeleteByIssueID(context.Background(), "ISS-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = repo.DeleteByIssueID(context.Background(), "ISS-2")
	require.Error(t, err)
}

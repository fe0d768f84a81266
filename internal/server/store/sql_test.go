package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/dbx"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
	"github.com/dmitrijs2005/qatrack/internal/server/repositories/issues"
	"github.com/dmitrijs2005/qatrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/qatrack/internal/server/repositories/screenshots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeIssuesRepo struct {
	issues.Repository
	rows map[string]*models.Issue

	insertErr error
	updateErr error
	listErr   error
}

func (f *fakeIssuesRepo) Insert(_ context.Context, i *models.Issue) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.rows[i.ID]; ok {
		return common.ErrorAlreadyExists
	}
	c := *i
	f.rows[i.ID] = &c
	return nil
}

func (f *fakeIssuesRepo) GetByID(_ context.Context, id string) (*models.Issue, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeIssuesRepo) List(_ context.Context) ([]*models.Issue, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Issue, 0, len(f.rows))
	for _, r := range f.rows {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeIssuesRepo) Update(_ context.Context, i *models.Issue) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	r, ok := f.rows[i.ID]
	if !ok {
		return common.ErrorNotFound
	}
	c := *i
	c.CreatedAt = r.CreatedAt
	f.rows[i.ID] = &c
	return nil
}

func (f *fakeIssuesRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeScreenshotsRepo struct {
	screenshots.Repository
	rows []*models.Screenshot

	insertErr error
	deleted   []string
}

func (f *fakeScreenshotsRepo) Insert(_ context.Context, s *models.Screenshot) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	c := *s
	f.rows = append(f.rows, &c)
	return nil
}

func (f *fakeScreenshotsRepo) ListByIssueID(_ context.Context, issueID string) ([]*models.Screenshot, error) {
	out := make([]*models.Screenshot, 0)
	for _, r := range f.rows {
		if r.IssueID == issueID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeScreenshotsRepo) ListAll(_ context.Context) ([]*models.Screenshot, error) {
	out := make([]*models.Screenshot, 0, len(f.rows))
	for _, r := range f.rows {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeScreenshotsRepo) DeleteByIssueID(_ context.Context, issueID string) (int64, error) {
	f.deleted = append(f.deleted, issueID)
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.IssueID == issueID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	i *fakeIssuesRepo
	s *fakeScreenshotsRepo
}

func (m *fakeRepoManager) Issues(dbx.DBTX) issues.Repository           { return m.i }
func (m *fakeRepoManager) Screenshots(dbx.DBTX) screenshots.Repository { return m.s }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newFakeManager() *fakeRepoManager {
	return &fakeRepoManager{
		i: &fakeIssuesRepo{rows: map[string]*models.Issue{}},
		s: &fakeScreenshotsRepo{},
	}
}

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func issueRow(id string, created time.Time) *models.Issue {
	return &models.Issue{ID: id, Title: "t-" + id, StepsToReproduce: "[]", CreatedAt: created, UpdatedAt: created}
}

func shot(id string, at time.Time) *models.Screenshot {
	return &models.Screenshot{ID: id, Name: id + ".png", Data: "data:image/png;base64,AA==", Type: "image/png", Size: 1, UploadedAt: at}
}

// -------- tests --------

func TestSQLStore_Create_CommitsAndReturnsStored(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := newFakeManager()
	s := NewSQLStore(db, m)

	got, err := s.Create(context.Background(), issueRow("ISS-1", t0), []*models.Screenshot{shot("ss-1", t0)})
	require.NoError(t, err)
	assert.Equal(t, "ISS-1", got.ID)
	require.Len(t, got.Screenshots, 1)
	assert.Equal(t, "ISS-1", got.Screenshots[0].IssueID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Create_ScreenshotFailureRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := newFakeManager()
	m.s.insertErr = errors.New("disk full")
	s := NewSQLStore(db, m)

	_, err := s.Create(context.Background(), issueRow("ISS-1", t0), []*models.Screenshot{shot("ss-1", t0)})
	require.Error(t, err)

	var se *common.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "create", se.Op)
	assert.ErrorIs(t, err, common.ErrorStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Create_DuplicatePassesThrough(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := newFakeManager()
	m.i.rows["ISS-1"] = issueRow("ISS-1", t0)
	s := NewSQLStore(db, m)

	_, err := s.Create(context.Background(), issueRow("ISS-1", t0), nil)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_BeginErrorIsStoreError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	s := NewSQLStore(db, newFakeManager())
	_, err := s.Get(context.Background(), "ISS-1")
	assert.ErrorIs(t, err, common.ErrorStore)
	assert.Contains(t, err.Error(), "conn refused")
}

func TestSQLStore_Get_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewSQLStore(db, newFakeManager())
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Create_SameInstantKeepsBatchOrder(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := newFakeManager()
	s := NewSQLStore(db, m)

	ids := []string{"ss-e", "ss-a", "ss-d", "ss-b", "ss-c"}
	batch := make([]*models.Screenshot, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, shot(id, t0))
	}
	_, err := s.Create(context.Background(), issueRow("A", t0), batch)
	require.NoError(t, err)

	for i, row := range m.s.rows {
		assert.Equal(t, i, row.Position)
	}

	// hand the rows back reversed; the store must restore batch order
	for i, j := 0, len(m.s.rows)-1; i < j; i, j = i+1, j-1 {
		m.s.rows[i], m.s.rows[j] = m.s.rows[j], m.s.rows[i]
	}
	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := make([]string, 0, len(ids))
	for _, sh := range list[0].Screenshots {
		got = append(got, sh.ID)
	}
	assert.Equal(t, ids, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_List_GroupsScreenshotsPerIssue(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := newFakeManager()
	m.i.rows["A"] = issueRow("A", t0)
	m.i.rows["B"] = issueRow("B", t0.Add(time.Minute))
	later := shot("ss-2", t0.Add(time.Second))
	later.IssueID = "A"
	earlier := shot("ss-1", t0)
	earlier.IssueID = "A"
	m.s.rows = []*models.Screenshot{later, earlier}

	s := NewSQLStore(db, m)
	got, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]*models.StoredIssue{}
	for _, g := range got {
		byID[g.ID] = g
	}
	require.Len(t, byID["A"].Screenshots, 2)
	assert.Equal(t, "ss-1", byID["A"].Screenshots[0].ID)
	assert.Equal(t, "ss-2", byID["A"].Screenshots[1].ID)
	assert.NotNil(t, byID["B"].Screenshots)
	assert.Empty(t, byID["B"].Screenshots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Update_NilScreenshotsLeavesThemAlone(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := newFakeManager()
	m.i.rows["A"] = issueRow("A", t0)
	existing := shot("ss-1", t0)
	existing.IssueID = "A"
	m.s.rows = []*models.Screenshot{existing}

	s := NewSQLStore(db, m)
	upd := issueRow("A", t0.Add(time.Hour))
	upd.Title = "new"
	got, err := s.Update(context.Background(), upd, nil)
	require.NoError(t, err)

	assert.Equal(t, "new", got.Title)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Len(t, got.Screenshots, 1)
	assert.Empty(t, m.s.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Update_ReplacesScreenshots(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := newFakeManager()
	m.i.rows["A"] = issueRow("A", t0)
	old := shot("ss-old", t0)
	old.IssueID = "A"
	m.s.rows = []*models.Screenshot{old}

	s := NewSQLStore(db, m)
	repl := []*models.Screenshot{shot("ss-new", t0.Add(time.Minute))}
	got, err := s.Update(context.Background(), issueRow("A", t0), &repl)
	require.NoError(t, err)

	require.Len(t, got.Screenshots, 1)
	assert.Equal(t, "ss-new", got.Screenshots[0].ID)
	assert.Equal(t, []string{"A"}, m.s.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Update_UnknownIDRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewSQLStore(db, newFakeManager())
	empty := []*models.Screenshot{}
	_, err := s.Update(context.Background(), issueRow("nope", t0), &empty)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Delete_RemovesScreenshotsFirst(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := newFakeManager()
	m.i.rows["A"] = issueRow("A", t0)
	sh := shot("ss-1", t0)
	sh.IssueID = "A"
	m.s.rows = []*models.Screenshot{sh}

	s := NewSQLStore(db, m)
	require.NoError(t, s.Delete(context.Background(), "A"))
	assert.Empty(t, m.s.rows)
	assert.Empty(t, m.i.rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Delete_UnknownID(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewSQLStore(db, newFakeManager())
	err := s.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

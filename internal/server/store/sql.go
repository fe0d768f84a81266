package store

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/qatrack/internal/dbx"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
	"github.com/dmitrijs2005/qatrack/internal/server/repositories/repomanager"
)

var readOnly = &sql.TxOptions{ReadOnly: true}

// SQLStore implements Store over database/sql, composing the repositories
// vended by a RepositoryManager inside dbx.WithTx.
type SQLStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSQLStore(db *sql.DB, rm repomanager.RepositoryManager) *SQLStore {
	return &SQLStore{db: db, repomanager: rm}
}

func (s *SQLStore) Create(ctx context.Context, issue *models.Issue, shots []*models.Screenshot) (*models.StoredIssue, error) {
	var result *models.StoredIssue

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Issues(tx).Insert(ctx, issue); err != nil {
			return err
		}
		if err := s.insertScreenshots(ctx, tx, issue.ID, shots); err != nil {
			return err
		}

		var err error
		result, err = s.load(ctx, tx, issue.ID)
		return err
	})
	if err != nil {
		return nil, wrap("create", err)
	}
	return result, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.StoredIssue, error) {
	var result *models.StoredIssue

	err := dbx.WithTx(ctx, s.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, wrap("get", err)
	}
	return result, nil
}

func (s *SQLStore) List(ctx context.Context) ([]*models.StoredIssue, error) {
	var result []*models.StoredIssue

	err := dbx.WithTx(ctx, s.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := s.repomanager.Issues(tx).List(ctx)
		if err != nil {
			return err
		}
		shots, err := s.repomanager.Screenshots(tx).ListAll(ctx)
		if err != nil {
			return err
		}

		byIssue := make(map[string][]*models.Screenshot, len(rows))
		for _, sh := range shots {
			byIssue[sh.IssueID] = append(byIssue[sh.IssueID], sh)
		}

		result = make([]*models.StoredIssue, 0, len(rows))
		for _, row := range rows {
			owned := byIssue[row.ID]
			if owned == nil {
				owned = []*models.Screenshot{}
			}
			sortScreenshots(owned)
			result = append(result, &models.StoredIssue{Issue: *row, Screenshots: owned})
		}
		return nil
	})
	if err != nil {
		return nil, wrap("list", err)
	}
	return result, nil
}

func (s *SQLStore) Update(ctx context.Context, issue *models.Issue, shots *[]*models.Screenshot) (*models.StoredIssue, error) {
	var result *models.StoredIssue

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Issues(tx).Update(ctx, issue); err != nil {
			return err
		}

		if shots != nil {
			if _, err := s.repomanager.Screenshots(tx).DeleteByIssueID(ctx, issue.ID); err != nil {
				return err
			}
			if err := s.insertScreenshots(ctx, tx, issue.ID, *shots); err != nil {
				return err
			}
		}

		var err error
		result, err = s.load(ctx, tx, issue.ID)
		return err
	})
	if err != nil {
		return nil, wrap("update", err)
	}
	return result, nil
}

// Delete removes screenshots and then the issue inside one transaction, so
// the cascade holds even on a schema without ON DELETE CASCADE.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Screenshots(tx).DeleteByIssueID(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Issues(tx).Delete(ctx, id)
	})
	return wrap("delete", err)
}

func (s *SQLStore) insertScreenshots(ctx context.Context, tx dbx.DBTX, issueID string, shots []*models.Screenshot) error {
	repo := s.repomanager.Screenshots(tx)
	for i, sh := range shots {
		sh.IssueID = issueID
		sh.Position = i
		if err := repo.Insert(ctx, sh); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) load(ctx context.Context, tx dbx.DBTX, id string) (*models.StoredIssue, error) {
	row, err := s.repomanager.Issues(tx).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	shots, err := s.repomanager.Screenshots(tx).ListByIssueID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.StoredIssue{Issue: *row, Screenshots: shots}, nil
}

// Package store is the persistence boundary for issues and their screenshots.
//
// Every Store implementation applies an issue mutation and the matching
// screenshot writes as one atomic unit, lists issues newest first, and lists
// each issue's screenshots in upload order. Unknown ids yield
// common.ErrorNotFound, duplicate ids common.ErrorAlreadyExists, and any other
// failure a *common.StoreError.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
)

type Store interface {
	Create(ctx context.Context, issue *models.Issue, shots []*models.Screenshot) (*models.StoredIssue, error)
	Get(ctx context.Context, id string) (*models.StoredIssue, error)
	List(ctx context.Context) ([]*models.StoredIssue, error)
	// Update overwrites the issue row. A nil shots pointer leaves the stored
	// screenshots untouched; a non-nil one replaces them wholesale.
	Update(ctx context.Context, issue *models.Issue, shots *[]*models.Screenshot) (*models.StoredIssue, error)
	Delete(ctx context.Context, id string) error
}

// wrap passes through the sentinels callers branch on and turns everything
// else into a *common.StoreError.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists) {
		return err
	}
	var se *common.StoreError
	if errors.As(err, &se) {
		return err
	}
	return common.NewStoreError(op, err)
}

func sortIssues(list []*models.StoredIssue) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func sortScreenshots(list []*models.Screenshot) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.UploadedAt.Equal(b.UploadedAt) {
			return a.UploadedAt.Before(b.UploadedAt)
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}

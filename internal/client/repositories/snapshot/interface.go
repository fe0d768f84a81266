package snapshot

import (
	"context"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
)

type Repository interface {
	ReplaceAll(ctx context.Context, issues []issue.Issue) error
	List(ctx context.Context) ([]issue.Issue, error)
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, t time.Time) error
}

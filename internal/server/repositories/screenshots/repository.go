package screenshots

import (
	"context"

	"github.com/dmitrijs2005/qatrack/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, s *models.Screenshot) error
	ListByIssueID(ctx context.Context, issueID string) ([]*models.Screenshot, error)
	ListAll(ctx context.Context) ([]*models.Screenshot, error)
	DeleteByIssueID(ctx context.Context, issueID string) (int64, error)
}

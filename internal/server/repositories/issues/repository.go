package issues

import (
	"context"

	"github.com/dmitrijs2005/qatrack/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context) ([]*models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, id string) error
}

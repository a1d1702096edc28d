package comments

import (
	"context"

	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Get(ctx context.Context, id string) (*models.Comment, error)
	GetForUpdate(ctx context.Context, id string) (*models.Comment, error)
	// ListByBug orders by vote count, highest first.
	ListByBug(ctx context.Context, bugID string) ([]*models.Comment, error)
	CountByBug(ctx context.Context, bugID string) (int64, error)
	VoteCountsByAuthor(ctx context.Context, authorID string) ([]int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	AddVoteCount(ctx context.Context, id string, delta int64) error
	Delete(ctx context.Context, id string) error
}

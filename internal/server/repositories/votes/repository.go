package votes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

// Repository is the vote ledger store: at most one row per voter and target.
type Repository interface {
	Find(ctx context.Context, voterID string, target models.Target) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	SetUpvote(ctx context.Context, id string, isUpvote bool, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountDownvotesByVoter(ctx context.Context, voterID string) (int64, error)
}

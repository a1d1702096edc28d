package bugs

import (
	"context"

	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

// Repository persists bugs together with their ordered tag list.
// List methods return newest first.
type Repository interface {
	Create(ctx context.Context, bug *models.Bug) error
	Get(ctx context.Context, id string) (*models.Bug, error)
	GetForUpdate(ctx context.Context, id string) (*models.Bug, error)
	List(ctx context.Context) ([]*models.Bug, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Bug, error)
	ListByTag(ctx context.Context, tagID string) ([]*models.Bug, error)
	// SearchTitle matches a case-insensitive substring of the title.
	SearchTitle(ctx context.Context, text string) ([]*models.Bug, error)
	// VoteCountsByAuthor returns the net vote count of every bug by authorID.
	VoteCountsByAuthor(ctx context.Context, authorID string) ([]int64, error)
	Update(ctx context.Context, bug *models.Bug) error
	SetStatus(ctx context.Context, id string, status models.BugStatus) error
	AddVoteCount(ctx context.Context, id string, delta int64) error
	Delete(ctx context.Context, id string) error
}

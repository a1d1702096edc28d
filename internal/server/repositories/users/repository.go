package users

import (
	"context"

	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/score"
)

// Repository persists users. Score is only ever changed through AddScore
// and SetScore.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	// GetForUpdate reads the user and locks the row until the enclosing
	// transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListIDs(ctx context.Context) ([]string, error)
	UpdateProfile(ctx context.Context, id, username, email string) error
	AddScore(ctx context.Context, id string, delta score.Points) error
	SetScore(ctx context.Context, id string, value score.Points) error
	SetBanned(ctx context.Context, id string, banned bool) error
	SetModerator(ctx context.Context, id string, moderator bool) error
	Delete(ctx context.Context, id string) error
}

package tags

import (
	"context"

	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

type Repository interface {
	// FindOrCreate returns the tag named exactly name, creating it with
	// newID when absent. Concurrent callers get the same tag.
	FindOrCreate(ctx context.Context, newID, name string) (*models.Tag, error)
	Get(ctx context.Context, id string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
}

package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/sanitize"
)

type TagService struct {
	b    Backend
	gate *Gate
}

func NewTagService(b Backend, gate *Gate) *TagService {
	return &TagService{b: b, gate: gate}
}

func (s *TagService) Get(ctx context.Context, id string) (*models.Tag, error) {
	return s.b.Repos.Tags(s.b.DB).Get(ctx, id)
}

func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.b.Repos.Tags(s.b.DB).List(ctx)
}

// FindOrCreate returns the tag with exactly this name, creating it if needed.
func (s *TagService) FindOrCreate(ctx context.Context, userID, name string) (*models.Tag, error) {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return nil, err
	}

	var tag *models.Tag
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		resolved, err := s.resolve(ctx, tx, []string{name})
		if err != nil {
			return err
		}
		if len(resolved) == 0 {
			return fmt.Errorf("tag name is required: %w", common.ErrValidation)
		}
		tag = &resolved[0]
		return nil
	})
	return tag, err
}

// resolve maps tag names to tags in the given order, creating missing ones.
// Blank names are skipped and duplicates collapse to their first position.
func (s *TagService) resolve(ctx context.Context, tx dbx.DBTX, names []string) ([]models.Tag, error) {
	repo := s.b.Repos.Tags(tx)
	seen := make(map[string]bool, len(names))
	out := make([]models.Tag, 0, len(names))
	for _, n := range names {
		n = sanitize.Text(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true

		t, err := repo.FindOrCreate(ctx, newID(), n)
		if err != nil {
			return nil, fmt.Errorf("error resolving tag %q: %w", n, err)
		}
		out = append(out, *t)
	}
	return out, nil
}

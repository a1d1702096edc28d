package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/sanitize"
)

// BugInput carries the fields of a new bug. Tags are names.
type BugInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

// BugUpdate changes only the fields that are set. A nil Tags keeps the
// current tags; an empty one clears them.
type BugUpdate struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

type BugService struct {
	b      Backend
	gate   *Gate
	tags   *TagService
	logger logging.Logger
}

func NewBugService(b Backend, gate *Gate, tags *TagService, l logging.Logger) *BugService {
	return &BugService{b: b, gate: gate, tags: tags, logger: l.With("module", "bugs")}
}

func cleanImageURL(raw string) (string, error) {
	u, ok := sanitize.ImageURL(raw)
	if !ok {
		return "", fmt.Errorf("image url must be an absolute http(s) url: %w", common.ErrValidation)
	}
	return u, nil
}

func (s *BugService) Create(ctx context.Context, userID string, in BugInput) (*models.Bug, error) {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return nil, err
	}

	title := sanitize.Text(in.Title)
	if title == "" {
		return nil, fmt.Errorf("bug title is required: %w", common.ErrValidation)
	}
	image, err := cleanImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	bug := &models.Bug{
		ID:          newID(),
		AuthorID:    userID,
		Title:       title,
		Description: sanitize.Text(in.Description),
		ImageURL:    image,
		CreatedAt:   now(),
		Status:      models.StatusReceived,
	}

	err = s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		tags, err := s.tags.resolve(ctx, tx, in.Tags)
		if err != nil {
			return err
		}
		bug.Tags = tags
		if err := s.b.Repos.Bugs(tx).Create(ctx, bug); err != nil {
			return fmt.Errorf("error creating bug: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "bug created", "bug", bug.ID, "author", userID)
	return bug, nil
}

func (s *BugService) Get(ctx context.Context, id string) (*models.Bug, error) {
	return s.b.Repos.Bugs(s.b.DB).Get(ctx, id)
}

func (s *BugService) List(ctx context.Context) ([]*models.Bug, error) {
	return s.b.Repos.Bugs(s.b.DB).List(ctx)
}

func (s *BugService) ListByTag(ctx context.Context, tagID string) ([]*models.Bug, error) {
	return s.b.Repos.Bugs(s.b.DB).ListByTag(ctx, tagID)
}

func (s *BugService) SearchTitle(ctx context.Context, text string) ([]*models.Bug, error) {
	return s.b.Repos.Bugs(s.b.DB).SearchTitle(ctx, text)
}

func (s *BugService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Bug, error) {
	return s.b.Repos.Bugs(s.b.DB).ListByAuthor(ctx, authorID)
}

// MyBugs lists the caller's own bugs.
func (s *BugService) MyBugs(ctx context.Context, userID string) ([]*models.Bug, error) {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return nil, err
	}
	return s.ListByAuthor(ctx, userID)
}

// Update applies u as the author or a moderator.
func (s *BugService) Update(ctx context.Context, userID, id string, u BugUpdate) (*models.Bug, error) {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return nil, err
	}

	var bug *models.Bug
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Bugs(tx)
		b, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("bug %s: %w", id, err)
		}
		if err := s.gate.canModify(ctx, userID, b.AuthorID); err != nil {
			return err
		}

		if u.Title != nil {
			b.Title = sanitize.Text(*u.Title)
			if b.Title == "" {
				return fmt.Errorf("bug title is required: %w", common.ErrValidation)
			}
		}
		if u.Description != nil {
			b.Description = sanitize.Text(*u.Description)
		}
		if u.ImageURL != nil {
			if b.ImageURL, err = cleanImageURL(*u.ImageURL); err != nil {
				return err
			}
		}
		if u.Tags != nil {
			if b.Tags, err = s.tags.resolve(ctx, tx, u.Tags); err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, b); err != nil {
			return fmt.Errorf("error updating bug: %w", err)
		}
		bug = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "bug updated", "bug", id, "by", userID)
	return bug, nil
}

// Delete removes the bug and its comments. Ledger rows are kept.
func (s *BugService) Delete(ctx context.Context, userID, id string) error {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return err
	}

	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Bugs(tx)
		b, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("bug %s: %w", id, err)
		}
		if err := s.gate.canModify(ctx, userID, b.AuthorID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "bug deleted", "bug", id, "by", userID)
	return nil
}

// MarkSolved closes the bug. Only its author may do this; solving a solved
// bug returns it unchanged.
func (s *BugService) MarkSolved(ctx context.Context, userID, id string) (*models.Bug, error) {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return nil, err
	}

	var bug *models.Bug
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Bugs(tx)
		b, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("bug %s: %w", id, err)
		}
		if b.AuthorID != userID {
			return fmt.Errorf("only the author can mark a bug as solved: %w", common.ErrForbidden)
		}
		bug = b
		if b.Status == models.StatusSolved {
			return nil
		}
		if err := repo.SetStatus(ctx, id, models.StatusSolved); err != nil {
			return fmt.Errorf("error updating status: %w", err)
		}
		b.Status = models.StatusSolved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "bug solved", "bug", id)
	return bug, nil
}

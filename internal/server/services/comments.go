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

type CommentInput struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

type CommentUpdate struct {
	Text     *string `json:"text"`
	ImageURL *string `json:"imageUrl"`
}

type CommentService struct {
	b      Backend
	gate   *Gate
	logger logging.Logger
}

func NewCommentService(b Backend, gate *Gate, l logging.Logger) *CommentService {
	return &CommentService{b: b, gate: gate, logger: l.With("module", "comments")}
}

// Create adds a comment to an open bug. The first comment on a RECEIVED bug
// moves it to IN_PROGRESS.
func (s *CommentService) Create(ctx context.Context, userID, bugID string, in CommentInput) (*models.Comment, error) {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return nil, err
	}

	text := sanitize.Text(in.Text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", common.ErrValidation)
	}
	image, err := cleanImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        newID(),
		BugID:     bugID,
		AuthorID:  userID,
		Text:      text,
		ImageURL:  image,
		CreatedAt: now(),
	}

	err = s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		bugs := s.b.Repos.Bugs(tx)
		bug, err := bugs.GetForUpdate(ctx, bugID)
		if err != nil {
			return fmt.Errorf("bug %s: %w", bugID, err)
		}
		if bug.Status == models.StatusSolved {
			return common.ErrBugSolved
		}

		if err := s.b.Repos.Comments(tx).Create(ctx, comment); err != nil {
			return fmt.Errorf("error creating comment: %w", err)
		}

		if bug.Status == models.StatusReceived {
			if err := bugs.SetStatus(ctx, bugID, models.StatusInProgress); err != nil {
				return fmt.Errorf("error updating bug status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "comment created", "comment", comment.ID, "bug", bugID, "author", userID)
	return comment, nil
}

// Get returns the comment if it belongs to bugID.
func (s *CommentService) Get(ctx context.Context, bugID, id string) (*models.Comment, error) {
	c, err := s.b.Repos.Comments(s.b.DB).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bugID != "" && c.BugID != bugID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (s *CommentService) ListByBug(ctx context.Context, bugID string) ([]*models.Comment, error) {
	if _, err := s.b.Repos.Bugs(s.b.DB).Get(ctx, bugID); err != nil {
		return nil, fmt.Errorf("bug %s: %w", bugID, err)
	}
	return s.b.Repos.Comments(s.b.DB).ListByBug(ctx, bugID)
}

// Update applies u as the author or a moderator. An empty bugID skips the
// parent check.
func (s *CommentService) Update(ctx context.Context, userID, bugID, id string, u CommentUpdate) (*models.Comment, error) {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return nil, err
	}

	var comment *models.Comment
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Comments(tx)
		c, err := s.lock(ctx, tx, bugID, id)
		if err != nil {
			return err
		}
		if err := s.gate.canModify(ctx, userID, c.AuthorID); err != nil {
			return err
		}

		if u.Text != nil {
			c.Text = sanitize.Text(*u.Text)
			if c.Text == "" {
				return fmt.Errorf("comment text is required: %w", common.ErrValidation)
			}
		}
		if u.ImageURL != nil {
			if c.ImageURL, err = cleanImageURL(*u.ImageURL); err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, c); err != nil {
			return fmt.Errorf("error updating comment: %w", err)
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "comment updated", "comment", id, "by", userID)
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, bugID, id string) error {
	if err := s.gate.CheckUserAccess(ctx, userID); err != nil {
		return err
	}

	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.lock(ctx, tx, bugID, id)
		if err != nil {
			return err
		}
		if err := s.gate.canModify(ctx, userID, c.AuthorID); err != nil {
			return err
		}
		return s.b.Repos.Comments(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "comment deleted", "comment", id, "by", userID)
	return nil
}

func (s *CommentService) lock(ctx context.Context, tx dbx.DBTX, bugID, id string) (*models.Comment, error) {
	c, err := s.b.Repos.Comments(tx).GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("comment %s: %w", id, err)
	}
	if bugID != "" && c.BugID != bugID {
		return nil, fmt.Errorf("comment %s: %w", id, common.ErrorNotFound)
	}
	return c, nil
}

package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/score"
)

// Notifier tells a user about a change to their account. Delivery is best
// effort: callers log a failure and carry on.
type Notifier interface {
	NotifyBan(ctx context.Context, user *models.User, reason string) error
	NotifyUnban(ctx context.Context, user *models.User) error
}

// ModerationService implements the moderator-only operations.
type ModerationService struct {
	b        Backend
	gate     *Gate
	bugs     *BugService
	comments *CommentService
	scores   *ScoreService
	notifier Notifier
	logger   logging.Logger
}

func NewModerationService(b Backend, gate *Gate, bugs *BugService, comments *CommentService,
	scores *ScoreService, n Notifier, l logging.Logger) *ModerationService {
	return &ModerationService{
		b:        b,
		gate:     gate,
		bugs:     bugs,
		comments: comments,
		scores:   scores,
		notifier: n,
		logger:   l.With("module", "moderation"),
	}
}

// BanUser bans userID. Moderators cannot be banned. An empty reason is
// replaced by common.DefaultBanReason.
func (s *ModerationService) BanUser(ctx context.Context, moderatorID, userID, reason string) (*models.User, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = common.DefaultBanReason
	}

	var user *models.User
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Users(tx)
		u, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		if u.IsModerator {
			return common.ErrCannotBanModerator
		}
		if err := repo.SetBanned(ctx, userID, true); err != nil {
			return fmt.Errorf("error banning user: %w", err)
		}
		u.IsBanned = true
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user banned", "moderator", moderatorID, "user", userID, "reason", reason)
	if err := s.notifier.NotifyBan(ctx, user, reason); err != nil {
		s.logger.Warn(ctx, "ban notification failed", "user", userID, "error", err)
	}
	return user, nil
}

func (s *ModerationService) UnbanUser(ctx context.Context, moderatorID, userID string) (*models.User, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}

	user, err := s.setFlag(ctx, userID, func(ctx context.Context, tx dbx.DBTX, u *models.User) error {
		u.IsBanned = false
		return s.b.Repos.Users(tx).SetBanned(ctx, userID, false)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user unbanned", "moderator", moderatorID, "user", userID)
	if err := s.notifier.NotifyUnban(ctx, user); err != nil {
		s.logger.Warn(ctx, "unban notification failed", "user", userID, "error", err)
	}
	return user, nil
}

func (s *ModerationService) PromoteToModerator(ctx context.Context, moderatorID, userID string) (*models.User, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	user, err := s.setFlag(ctx, userID, func(ctx context.Context, tx dbx.DBTX, u *models.User) error {
		if u.IsBanned {
			return fmt.Errorf("%w: banned users cannot be promoted", common.ErrValidation)
		}
		u.IsModerator = true
		return s.b.Repos.Users(tx).SetModerator(ctx, userID, true)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user promoted", "moderator", moderatorID, "user", userID)
	return user, nil
}

func (s *ModerationService) DemoteFromModerator(ctx context.Context, moderatorID, userID string) (*models.User, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	user, err := s.setFlag(ctx, userID, func(ctx context.Context, tx dbx.DBTX, u *models.User) error {
		u.IsModerator = false
		return s.b.Repos.Users(tx).SetModerator(ctx, userID, false)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user demoted", "moderator", moderatorID, "user", userID)
	return user, nil
}

// IsModerator answers the "check" call for any caller.
func (s *ModerationService) IsModerator(ctx context.Context, userID string) (bool, error) {
	return s.gate.IsModerator(ctx, userID)
}

func (s *ModerationService) setFlag(ctx context.Context, userID string, fn func(context.Context, dbx.DBTX, *models.User) error) (*models.User, error) {
	var user *models.User
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.b.Repos.Users(tx).GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		if err := fn(ctx, tx, u); err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}
		user = u
		return nil
	})
	return user, err
}

// UpdateBug edits any bug on behalf of a moderator.
func (s *ModerationService) UpdateBug(ctx context.Context, moderatorID, bugID string, u BugUpdate) (*models.Bug, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	return s.bugs.Update(ctx, moderatorID, bugID, u)
}

func (s *ModerationService) DeleteBug(ctx context.Context, moderatorID, bugID string) error {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return err
	}
	return s.bugs.Delete(ctx, moderatorID, bugID)
}

func (s *ModerationService) UpdateComment(ctx context.Context, moderatorID, commentID string, u CommentUpdate) (*models.Comment, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	return s.comments.Update(ctx, moderatorID, "", commentID, u)
}

func (s *ModerationService) DeleteComment(ctx context.Context, moderatorID, commentID string) error {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, moderatorID, "", commentID)
}

func (s *ModerationService) RecalculateScore(ctx context.Context, moderatorID, userID string) (score.Points, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return 0, err
	}
	return s.scores.RecalculateScore(ctx, userID)
}

func (s *ModerationService) RecalculateAllScores(ctx context.Context, moderatorID string) (*RecalcReport, error) {
	if err := s.gate.RequireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	return s.scores.RecalculateAllScores(ctx)
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/common"
)

// Gate is the moderation precondition shared by every mutating operation.
type Gate struct {
	b Backend
}

func NewGate(b Backend) *Gate {
	return &Gate{b: b}
}

// IsBanned reports the ban flag. Unknown users are not banned: a caller may
// act before registering a profile.
func (g *Gate) IsBanned(ctx context.Context, userID string) (bool, error) {
	u, err := g.b.Repos.Users(g.b.DB).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error reading user %s: %w", userID, err)
	}
	return u.IsBanned, nil
}

// IsModerator reports the moderator flag. Unknown users are not moderators.
func (g *Gate) IsModerator(ctx context.Context, userID string) (bool, error) {
	u, err := g.b.Repos.Users(g.b.DB).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error reading user %s: %w", userID, err)
	}
	return u.IsModerator, nil
}

// CheckUserAccess fails with common.ErrBanned for banned users.
func (g *Gate) CheckUserAccess(ctx context.Context, userID string) error {
	banned, err := g.IsBanned(ctx, userID)
	if err != nil {
		return err
	}
	if banned {
		return common.ErrBanned
	}
	return nil
}

// RequireModerator fails with common.ErrForbidden unless userID is a moderator.
func (g *Gate) RequireModerator(ctx context.Context, userID string) error {
	ok, err := g.IsModerator(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("only moderators can perform this action: %w", common.ErrForbidden)
	}
	return nil
}

// canModify reports whether actorID may edit content authored by authorID.
func (g *Gate) canModify(ctx context.Context, actorID, authorID string) error {
	if actorID == authorID {
		return nil
	}
	ok, err := g.IsModerator(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("only the author or a moderator can modify this content: %w", common.ErrForbidden)
	}
	return nil
}

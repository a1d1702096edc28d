package services

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/sanitize"
)

// Profile is the user-editable part of a User.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (p Profile) clean() (Profile, error) {
	p.Username = sanitize.Text(p.Username)
	if p.Username == "" {
		return p, fmt.Errorf("username is required: %w", common.ErrValidation)
	}
	if p.Email != "" {
		addr, err := mail.ParseAddress(p.Email)
		if err != nil {
			return p, fmt.Errorf("invalid email: %w", common.ErrValidation)
		}
		p.Email = addr.Address
	}
	return p, nil
}

type UserService struct {
	b      Backend
	gate   *Gate
	logger logging.Logger
}

func NewUserService(b Backend, gate *Gate, l logging.Logger) *UserService {
	return &UserService{b: b, gate: gate, logger: l.With("module", "users")}
}

// Register creates the profile of an authenticated caller. A uid can only
// be registered once.
func (s *UserService) Register(ctx context.Context, uid string, p Profile) (*models.User, error) {
	p, err := p.clean()
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.b.Repos.Users(tx).Create(ctx, &models.User{
			ID:        uid,
			Username:  p.Username,
			Email:     p.Email,
			CreatedAt: now(),
		})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user", uid)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.b.Repos.Users(s.b.DB).Get(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.b.Repos.Users(s.b.DB).List(ctx)
}

// UpdateProfile lets a user edit their own profile only.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, id string, p Profile) (*models.User, error) {
	if callerID != id {
		return nil, fmt.Errorf("users can only update their own profile: %w", common.ErrForbidden)
	}
	p, err := p.clean()
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Users(tx)
		u, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("user %s: %w", id, err)
		}
		if err := repo.UpdateProfile(ctx, id, p.Username, p.Email); err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}
		u.Username, u.Email = p.Username, p.Email
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Users may delete themselves; moderators may
// delete anyone. Content and votes by the user are kept.
func (s *UserService) Delete(ctx context.Context, callerID, id string) error {
	if callerID != id {
		if err := s.gate.RequireModerator(ctx, callerID); err != nil {
			return err
		}
	}

	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.b.Repos.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "user deleted", "user", id, "by", callerID)
	return nil
}

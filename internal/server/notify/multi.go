package notify

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/services"
)

// Multi fans a notice out to every channel. All channels are tried; their
// errors are joined.
type Multi []services.Notifier

func (m Multi) NotifyBan(ctx context.Context, user *models.User, reason string) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.NotifyBan(ctx, user, reason))
	}
	return errors.Join(errs...)
}

func (m Multi) NotifyUnban(ctx context.Context, user *models.User) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.NotifyUnban(ctx, user))
	}
	return errors.Join(errs...)
}

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/services"
)

// MaxRetries bounds redelivery of a single notice.
const MaxRetries = 3

var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// Async delivers notices on background goroutines so a slow mail server
// never holds up a moderation request. Both methods return nil at once.
type Async struct {
	next   services.Notifier
	logger logging.Logger
	wg     sync.WaitGroup
}

func NewAsync(next services.Notifier, l logging.Logger) *Async {
	return &Async{next: next, logger: l.With("module", "notify")}
}

func (a *Async) NotifyBan(ctx context.Context, user *models.User, reason string) error {
	u := *user
	a.dispatch(ctx, "ban", u.ID, func(ctx context.Context) error {
		return a.next.NotifyBan(ctx, &u, reason)
	})
	return nil
}

func (a *Async) NotifyUnban(ctx context.Context, user *models.User) error {
	u := *user
	a.dispatch(ctx, "unban", u.ID, func(ctx context.Context) error {
		return a.next.NotifyUnban(ctx, &u)
	})
	return nil
}

// Wait blocks until every pending delivery finished or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) dispatch(ctx context.Context, kind, userID string, send func(context.Context) error) {
	// The request context ends with the response; keep its values only.
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		attempt := 0
		op := func() error {
			attempt++
			return send(ctx)
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), MaxRetries), ctx)

		if err := backoff.Retry(op, policy); err != nil {
			a.logger.Error(ctx, "notification failed", "kind", kind, "user", userID, "attempts", attempt, "error", err)
			return
		}
		a.logger.Debug(ctx, "notification delivered", "kind", kind, "user", userID, "attempts", attempt)
	}()
}

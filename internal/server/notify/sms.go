package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

// SMSNotifier formats the SMS notices. No SMS gateway is wired, so the
// message is logged.
type SMSNotifier struct {
	appName string
	logger  logging.Logger
}

func NewSMSNotifier(appName string, l logging.Logger) *SMSNotifier {
	return &SMSNotifier{appName: appName, logger: l.With("module", "notify", "channel", "sms")}
}

func (n *SMSNotifier) BanText(reason string) string {
	return fmt.Sprintf("%s: Your account has been suspended. Reason: %s. Contact support for more info.", n.appName, reason)
}

func (n *SMSNotifier) UnbanText() string {
	return fmt.Sprintf("%s: Your account has been restored. Welcome back!", n.appName)
}

func (n *SMSNotifier) NotifyBan(ctx context.Context, user *models.User, reason string) error {
	n.logger.Info(ctx, "sms notification", "user", user.ID, "text", n.BanText(reason))
	return nil
}

func (n *SMSNotifier) NotifyUnban(ctx context.Context, user *models.User) error {
	n.logger.Info(ctx, "sms notification", "user", user.ID, "text", n.UnbanText())
	return nil
}

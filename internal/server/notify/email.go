// Package notify delivers ban and unban notices to users. Delivery is
// best effort; callers log failures and never roll back on them.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/config"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

const timeLayout = "02/01/2006 15:04"

// Email is a plain-text message ready to send.
type Email struct {
	To      string
	Subject string
	Body    string
}

type emailData struct {
	AppName      string
	SupportEmail string
	Reason       string
	When         string
}

var (
	banTemplate = template.Must(template.New("ban").Parse(`Hello,

Your account has been SUSPENDED from {{.AppName}}.

REASON: {{.Reason}}

What this means:
- You cannot access your account
- You cannot post bugs or comments
- You cannot vote on content

What you can do:
- Contact support: {{.SupportEmail}}
- Review our community guidelines
- Wait for the suspension to be lifted

Suspended on: {{.When}}

Best regards,
{{.AppName}} Team

---
This is an automated message. Please do not reply to this email.
`))

	unbanTemplate = template.Must(template.New("unban").Parse(`Hello,

GREAT NEWS! Your account has been RESTORED!

You can now access {{.AppName}} again and enjoy all features:
- Access your account normally
- Report and manage bugs
- Post comments and engage with the community
- Vote on bugs and comments

Moving forward:
- Please review our community guidelines
- Help maintain a positive environment
- Contact support if you have questions: {{.SupportEmail}}

Account restored on: {{.When}}

Welcome back!
{{.AppName}} Team

---
This is an automated message. Please do not reply to this email.
`))
)

func render(t *template.Template, d emailData) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, d)
	return buf.String()
}

// BuildBanEmail renders the suspension notice.
func BuildBanEmail(appName, supportEmail, to, reason string, at time.Time) Email {
	return Email{
		To:      to,
		Subject: "Account Suspended - " + appName,
		Body: render(banTemplate, emailData{
			AppName:      appName,
			SupportEmail: supportEmail,
			Reason:       reason,
			When:         at.Format(timeLayout),
		}),
	}
}

// BuildUnbanEmail renders the restoration notice.
func BuildUnbanEmail(appName, supportEmail, to string, at time.Time) Email {
	return Email{
		To:      to,
		Subject: "Account Restored - " + appName,
		Body: render(unbanTemplate, emailData{
			AppName:      appName,
			SupportEmail: supportEmail,
			When:         at.Format(timeLayout),
		}),
	}
}

var (
	sendMail = smtp.SendMail
	now      = func() time.Time { return time.Now().UTC() }
)

// EmailNotifier sends notices over SMTP. When mail is disabled the message
// is only logged.
type EmailNotifier struct {
	cfg    *config.Config
	logger logging.Logger
}

func NewEmailNotifier(cfg *config.Config, l logging.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: l.With("module", "notify", "channel", "email")}
}

func (n *EmailNotifier) NotifyBan(ctx context.Context, user *models.User, reason string) error {
	return n.deliver(ctx, BuildBanEmail(n.cfg.AppName, n.cfg.SupportEmail, user.Email, reason, now()))
}

func (n *EmailNotifier) NotifyUnban(ctx context.Context, user *models.User) error {
	return n.deliver(ctx, BuildUnbanEmail(n.cfg.AppName, n.cfg.SupportEmail, user.Email, now()))
}

func (n *EmailNotifier) deliver(ctx context.Context, m Email) error {
	if m.To == "" {
		n.logger.Warn(ctx, "no email address, notification skipped", "subject", m.Subject)
		return nil
	}
	if !n.cfg.MailEnabled {
		n.logger.Info(ctx, "mail disabled, notification logged only", "to", m.To, "subject", m.Subject, "body", m.Body)
		return nil
	}

	addr := net.JoinHostPort(n.cfg.SMTPHost, strconv.Itoa(n.cfg.SMTPPort))
	var auth smtp.Auth
	if n.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	if err := sendMail(addr, auth, n.cfg.MailFrom, []string{m.To}, n.message(m)); err != nil {
		return fmt.Errorf("error sending email to %s: %w", m.To, err)
	}
	n.logger.Info(ctx, "email sent", "to", m.To, "subject", m.Subject)
	return nil
}

func (n *EmailNotifier) message(m Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.MailFrom)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

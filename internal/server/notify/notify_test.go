package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/config"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func TestBuildBanEmail(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	m := BuildBanEmail("Bug Radar", "support@bugradar.com", "troll@example.com", "spam", at)

	assert.Equal(t, "troll@example.com", m.To)
	assert.Equal(t, "Account Suspended - Bug Radar", m.Subject)
	assert.Contains(t, m.Body, "SUSPENDED from Bug Radar.")
	assert.Contains(t, m.Body, "REASON: spam")
	assert.Contains(t, m.Body, "Contact support: support@bugradar.com")
	assert.Contains(t, m.Body, "Suspended on: 09/03/2024 14:05")
	assert.Contains(t, m.Body, "Bug Radar Team")
}

func TestBuildUnbanEmail(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	m := BuildUnbanEmail("Bug Radar", "help@example.com", "u@example.com", at)

	assert.Equal(t, "Account Restored - Bug Radar", m.Subject)
	assert.Contains(t, m.Body, "access Bug Radar again")
	assert.Contains(t, m.Body, "help@example.com")
	assert.Contains(t, m.Body, "Account restored on: 09/03/2024 14:05")
}

func stubSendMail(t *testing.T, err error) *[]string {
	t.Helper()
	orig := sendMail
	t.Cleanup(func() { sendMail = orig })

	var sent []string
	sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, addr+"|"+from+"|"+strings.Join(to, ",")+"|"+string(msg))
		return err
	}
	return &sent
}

func TestEmailNotifier_Sends(t *testing.T) {
	cfg := testConfig()
	cfg.MailEnabled = true
	sent := stubSendMail(t, nil)

	n := NewEmailNotifier(cfg, logging.NewDiscardLogger())
	err := n.NotifyBan(context.Background(), &models.User{ID: "u1", Email: "u1@example.com"}, "spam")
	require.NoError(t, err)

	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.True(t, strings.HasPrefix(msg, "localhost:1025|noreply@bugradar.com|u1@example.com|"))
	assert.Contains(t, msg, "Subject: Account Suspended - Bug Radar\r\n")
	assert.Contains(t, msg, "REASON: spam\r\n")
}

func TestEmailNotifier_DisabledOrNoAddress(t *testing.T) {
	cfg := testConfig()
	sent := stubSendMail(t, nil)
	n := NewEmailNotifier(cfg, logging.NewDiscardLogger())

	require.NoError(t, n.NotifyUnban(context.Background(), &models.User{ID: "u1", Email: "u1@example.com"}))
	cfg.MailEnabled = true
	require.NoError(t, n.NotifyUnban(context.Background(), &models.User{ID: "u2"}))
	assert.Empty(t, *sent)
}

func TestEmailNotifier_SendError(t *testing.T) {
	cfg := testConfig()
	cfg.MailEnabled = true
	stubSendMail(t, errors.New("connection refused"))

	n := NewEmailNotifier(cfg, logging.NewDiscardLogger())
	err := n.NotifyUnban(context.Background(), &models.User{ID: "u1", Email: "u1@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMSNotifier_Texts(t *testing.T) {
	n := NewSMSNotifier("Bug Radar", logging.NewDiscardLogger())
	assert.Equal(t, "Bug Radar: Your account has been suspended. Reason: spam. Contact support for more info.", n.BanText("spam"))
	assert.Equal(t, "Bug Radar: Your account has been restored. Welcome back!", n.UnbanText())
	assert.NoError(t, n.NotifyBan(context.Background(), &models.User{ID: "u"}, "spam"))
	assert.NoError(t, n.NotifyUnban(context.Background(), &models.User{ID: "u"}))
}

type flakyNotifier struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyNotifier) call() error {
	if f.calls.Add(1) <= f.failures {
		return errors.New("temporary failure")
	}
	return nil
}

func (f *flakyNotifier) NotifyBan(context.Context, *models.User, string) error { return f.call() }
func (f *flakyNotifier) NotifyUnban(context.Context, *models.User) error       { return f.call() }

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &flakyNotifier{}
	bad := &flakyNotifier{failures: 10}
	m := Multi{bad, ok}

	err := m.NotifyBan(context.Background(), &models.User{ID: "u"}, "r")
	assert.ErrorContains(t, err, "temporary failure")
	assert.EqualValues(t, 1, ok.calls.Load())

	assert.NoError(t, Multi{ok}.NotifyUnban(context.Background(), &models.User{ID: "u"}))
}

func zeroBackOff(t *testing.T) {
	t.Helper()
	orig := newBackOff
	t.Cleanup(func() { newBackOff = orig })
	newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
}

func TestAsync_RetriesUntilDelivered(t *testing.T) {
	zeroBackOff(t)
	next := &flakyNotifier{failures: 2}
	a := NewAsync(next, logging.NewDiscardLogger())

	require.NoError(t, a.NotifyBan(context.Background(), &models.User{ID: "u"}, "spam"))
	require.NoError(t, a.Wait(context.Background()))
	assert.EqualValues(t, 3, next.calls.Load())
}

func TestAsync_GivesUpAfterMaxRetries(t *testing.T) {
	zeroBackOff(t)
	next := &flakyNotifier{failures: 100}
	a := NewAsync(next, logging.NewDiscardLogger())

	require.NoError(t, a.NotifyUnban(context.Background(), &models.User{ID: "u"}))
	require.NoError(t, a.Wait(context.Background()))
	assert.EqualValues(t, MaxRetries+1, next.calls.Load())
}

func TestAsync_SurvivesCanceledRequest(t *testing.T) {
	zeroBackOff(t)
	next := &flakyNotifier{}
	a := NewAsync(next, logging.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.NotifyBan(ctx, &models.User{ID: "u"}, "spam"))
	require.NoError(t, a.Wait(context.Background()))
	assert.EqualValues(t, 1, next.calls.Load())
}

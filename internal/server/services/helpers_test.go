package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/config"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu      sync.Mutex
	banned  []string
	reasons []string
	unban   []string
	err     error
}

func (n *recordingNotifier) NotifyBan(_ context.Context, u *models.User, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.banned = append(n.banned, u.ID)
	n.reasons = append(n.reasons, reason)
	return n.err
}

func (n *recordingNotifier) NotifyUnban(_ context.Context, u *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unban = append(n.unban, u.ID)
	return n.err
}

type fixture struct {
	store      *memory.Store
	gate       *Gate
	scores     *ScoreService
	votes      *VoteService
	bugs       *BugService
	comments   *CommentService
	tags       *TagService
	users      *UserService
	moderation *ModerationService
	images     *ImageService
	notifier   *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	b := Backend{Tx: store, Repos: store}
	l := logging.NewDiscardLogger()

	f := &fixture{store: store, notifier: &recordingNotifier{}}
	f.gate = NewGate(b)
	f.scores = NewScoreService(b, 2, l)
	f.votes = NewVoteService(b, f.gate, f.scores, l)
	f.tags = NewTagService(b, f.gate)
	f.bugs = NewBugService(b, f.gate, f.tags, l)
	f.comments = NewCommentService(b, f.gate, l)
	f.users = NewUserService(b, f.gate, l)
	f.moderation = NewModerationService(b, f.gate, f.bugs, f.comments, f.scores, f.notifier, l)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	f.images = NewImageService(f.gate, cfg)
	return f
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), id, Profile{Username: id, Email: id + "@example.com"})
	require.NoError(t, err)
	return u
}

func (f *fixture) moderator(t *testing.T, id string) *models.User {
	t.Helper()
	u := f.user(t, id)
	err := f.store.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		return f.store.Users(tx).SetModerator(ctx, id, true)
	})
	require.NoError(t, err)
	u.IsModerator = true
	return u
}

func (f *fixture) reload(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.users.Get(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) bug(t *testing.T, authorID, title string, tags ...string) *models.Bug {
	t.Helper()
	b, err := f.bugs.Create(context.Background(), authorID, BugInput{Title: title, Tags: tags})
	require.NoError(t, err)
	return b
}

func (f *fixture) reloadBug(t *testing.T, id string) *models.Bug {
	t.Helper()
	b, err := f.bugs.Get(context.Background(), id)
	require.NoError(t, err)
	return b
}

package admin

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/server/auth"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, "token", "u1", "--secret", "s3cret", "--validity", "5m")
	require.NoError(t, err)

	uid, err := auth.GetUserIDFromToken(string(bytes.TrimSpace([]byte(out))), []byte("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func TestTokenCommand_NoSecret(t *testing.T) {
	t.Setenv(secretEnv, "")
	_, err := run(t, "token", "u1")
	require.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, map[string]bool{"isModerator": false})
	out, err := run(t, "check", "--server", srv.URL, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "not a moderator")
}

func TestBanCommand(t *testing.T) {
	reply := map[string]any{
		"message": "User banned successfully",
		"user":    map[string]any{"uid": "u9", "username": "eve", "isBanned": true},
	}
	srv, rec := newServer(t, http.StatusOK, reply)

	out, err := run(t, "ban", "u9", "--reason", "spam", "--server", srv.URL, "--token", "tok")
	require.NoError(t, err)
	assert.Equal(t, "spam", rec.body["reason"])
	assert.Contains(t, out, "User banned successfully")
	assert.Contains(t, out, "uid=u9 username=eve banned=true moderator=false")
}

func TestPromoteCommand_UsesEnvToken(t *testing.T) {
	t.Setenv(TokenEnv, "env-tok")
	srv, rec := newServer(t, http.StatusOK, map[string]any{"message": "User promoted to moderator successfully"})

	_, err := run(t, "promote", "u2", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer env-tok", rec.auth)
	assert.Equal(t, "/api/moderator/promote/u2", rec.path)
}

func TestRecalcAllCommand(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, map[string]int{"users": 3, "failed": 1})
	out, err := run(t, "recalc-all", "--server", srv.URL, "--token", "tok", "--timeout", time.Second.String())
	require.NoError(t, err)
	assert.Equal(t, "✓ 3 users recalculated, 1 failed\n", out)
}

func TestCommand_ServerError(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden, map[string]string{"error": "forbidden"})
	_, err := run(t, "recalc", "u1", "--server", srv.URL, "--token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCommand_RequiresUID(t *testing.T) {
	_, err := run(t, "unban", "--token", "tok")
	require.Error(t, err)
}

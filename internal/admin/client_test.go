package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]string
}

func newServer(t *testing.T, status int, reply any) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		if r.ContentLength > 0 {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestClient_Check(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, map[string]bool{"isModerator": true})

	ok, err := NewClient(srv.URL+"/", "tok").Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/moderator/check", rec.path)
	assert.Equal(t, "Bearer tok", rec.auth)
}

func TestClient_BanSendsReason(t *testing.T) {
	reply := map[string]any{
		"message": "User banned successfully",
		"user":    map[string]any{"uid": "u1", "username": "bob", "isBanned": true},
	}
	srv, rec := newServer(t, http.StatusOK, reply)

	res, err := NewClient(srv.URL, "tok").Ban(context.Background(), "u1", "spam")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/moderator/ban/u1", rec.path)
	assert.Equal(t, "spam", rec.body["reason"])
	assert.Equal(t, "User banned successfully", res.Message)
	assert.True(t, res.User.IsBanned)
	assert.Equal(t, "bob", res.User.Username)
}

func TestClient_UserFlagPaths(t *testing.T) {
	tests := []struct {
		name string
		call func(*Client, context.Context, string) (*UserResult, error)
		path string
	}{
		{"unban", (*Client).Unban, "/api/moderator/unban/u1"},
		{"promote", (*Client).Promote, "/api/moderator/promote/u1"},
		{"demote", (*Client).Demote, "/api/moderator/demote/u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newServer(t, http.StatusOK, map[string]any{"message": "ok"})
			_, err := tt.call(NewClient(srv.URL, "tok"), context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.path, rec.path)
		})
	}
}

func TestClient_Recalculate(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, json.RawMessage(`{"uid":"u1","score":-1.5}`))

	res, err := NewClient(srv.URL, "tok").Recalculate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "/api/moderator/recalculate-score/u1", rec.path)
	assert.Equal(t, "u1", res.UserID)
	assert.Equal(t, "-1.5", res.Score.String())
}

func TestClient_RecalculateAll(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, map[string]int{"users": 4, "failed": 1})

	res, err := NewClient(srv.URL, "tok").RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecalcResult{Users: 4, Failed: 1}, *res)
}

func TestClient_APIError(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "moderator required"})

	_, err := NewClient(srv.URL, "tok").Check(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "server returned 403: forbidden: moderator required", apiErr.Error())
}

func TestClient_APIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok").RecalculateAll(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Code)
}

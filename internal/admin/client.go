// Package admin is the HTTP client behind the bugradar-admin CLI. It calls
// the moderator endpoints with a bearer token.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/common"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, msg)
}

// UserResult is the server reply to a ban, unban, promote or demote.
type UserResult struct {
	Message string `json:"message"`
	User    struct {
		ID          string `json:"uid"`
		Username    string `json:"username"`
		IsBanned    bool   `json:"isBanned"`
		IsModerator bool   `json:"isModerator"`
	} `json:"user"`
}

type ScoreResult struct {
	UserID string      `json:"uid"`
	Score  json.Number `json:"score"`
}

type RecalcResult struct {
	Users  int `json:"users"`
	Failed int `json:"failed"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(out)
}

func userPath(action, uid string) string {
	return "/api/moderator/" + action + "/" + url.PathEscape(uid)
}

// Check reports whether the token's owner is a moderator.
func (c *Client) Check(ctx context.Context) (bool, error) {
	var out struct {
		IsModerator bool `json:"isModerator"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/moderator/check", nil, &out); err != nil {
		return false, err
	}
	return out.IsModerator, nil
}

func (c *Client) Ban(ctx context.Context, uid, reason string) (*UserResult, error) {
	var out UserResult
	err := c.do(ctx, http.MethodPost, userPath("ban", uid), map[string]string{"reason": reason}, &out)
	return &out, err
}

func (c *Client) Unban(ctx context.Context, uid string) (*UserResult, error) {
	var out UserResult
	err := c.do(ctx, http.MethodPost, userPath("unban", uid), nil, &out)
	return &out, err
}

func (c *Client) Promote(ctx context.Context, uid string) (*UserResult, error) {
	var out UserResult
	err := c.do(ctx, http.MethodPost, userPath("promote", uid), nil, &out)
	return &out, err
}

func (c *Client) Demote(ctx context.Context, uid string) (*UserResult, error) {
	var out UserResult
	err := c.do(ctx, http.MethodPost, userPath("demote", uid), nil, &out)
	return &out, err
}

func (c *Client) Recalculate(ctx context.Context, uid string) (*ScoreResult, error) {
	var out ScoreResult
	err := c.do(ctx, http.MethodPost, userPath("recalculate-score", uid), nil, &out)
	return &out, err
}

func (c *Client) RecalculateAll(ctx context.Context) (*RecalcResult, error) {
	var out RecalcResult
	err := c.do(ctx, http.MethodPost, "/api/moderator/recalculate-all-scores", nil, &out)
	return &out, err
}

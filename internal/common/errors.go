// Package common defines shared constants and sentinel errors used across
// the server, the admin CLI and the repositories. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Access errors.
	ErrForbidden = errors.New("forbidden")
	ErrBanned    = errors.New("your account has been banned")

	// Business-rule violations.
	ErrValidation         = errors.New("validation error")
	ErrSelfVote           = errors.New("cannot vote on your own content")
	ErrBugSolved          = errors.New("cannot comment on a solved bug")
	ErrCannotBanModerator = errors.New("cannot ban a moderator")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Package common contains shared constants and sentinel errors used across
// BugRadar components.
package common

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// DefaultBanReason is used when a moderator bans a user without a reason.
const DefaultBanReason = "Inappropriate behavior"

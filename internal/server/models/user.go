// Package models defines the BugRadar domain entities shared by the
// repositories, the services and the HTTP layer.
package models

import (
	"time"

	"github.com/dmitrijs2005/bugradar/internal/server/score"
)

// User is a community member. ID is the uid issued by the identity provider.
// Score changes only through the scoring engine.
type User struct {
	ID          string       `json:"uid"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	Score       score.Points `json:"score"`
	IsBanned    bool         `json:"isBanned"`
	IsModerator bool         `json:"isModerator"`
	CreatedAt   time.Time    `json:"createdAt"`
}

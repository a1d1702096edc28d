package models

import "time"

// BugStatus only moves forward: RECEIVED -> IN_PROGRESS -> SOLVED.
type BugStatus string

const (
	StatusReceived   BugStatus = "RECEIVED"
	StatusInProgress BugStatus = "IN_PROGRESS"
	StatusSolved     BugStatus = "SOLVED"
)

func (s BugStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusInProgress, StatusSolved:
		return true
	}
	return false
}

func (s BugStatus) rank() int {
	switch s {
	case StatusReceived:
		return 0
	case StatusInProgress:
		return 1
	case StatusSolved:
		return 2
	}
	return -1
}

// CanMoveTo reports whether next is reachable from s. Staying put is allowed.
func (s BugStatus) CanMoveTo(next BugStatus) bool {
	return next.Valid() && s.Valid() && next.rank() >= s.rank()
}

type Bug struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      BugStatus `json:"status"`
	Tags        []Tag     `json:"tags"`
	VoteCount   int64     `json:"voteCount"`
}

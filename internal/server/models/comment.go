package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	BugID     string    `json:"bugId"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	VoteCount int64     `json:"voteCount"`
}

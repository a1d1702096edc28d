package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/server/score"
)

// TargetKind tells which kind of content a vote applies to.
type TargetKind string

const (
	TargetBug     TargetKind = "bug"
	TargetComment TargetKind = "comment"
)

// Weights returns the scoring weights for votes on this kind of content.
func (k TargetKind) Weights() score.Weights {
	if k == TargetComment {
		return score.CommentWeights
	}
	return score.BugWeights
}

// Target identifies exactly one bug or one comment.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func BugTarget(id string) Target     { return Target{Kind: TargetBug, ID: id} }
func CommentTarget(id string) Target { return Target{Kind: TargetComment, ID: id} }

func (t Target) Validate() error {
	if t.Kind != TargetBug && t.Kind != TargetComment {
		return fmt.Errorf("unknown vote target kind %q", t.Kind)
	}
	if t.ID == "" {
		return fmt.Errorf("empty %s id", t.Kind)
	}
	return nil
}

func (t Target) String() string { return string(t.Kind) + ":" + t.ID }

// Vote is the single ledger row of one voter on one target. Toggling keeps
// the same ID.
type Vote struct {
	ID        string    `json:"id"`
	VoterID   string    `json:"voterId"`
	Target    Target    `json:"target"`
	IsUpvote  bool      `json:"isUpvote"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

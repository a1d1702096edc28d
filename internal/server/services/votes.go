package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/score"
)

// VoteService owns the vote ledger. Every ledger change, the matching
// content vote count and both score deltas commit in one transaction.
type VoteService struct {
	b      Backend
	gate   *Gate
	scores *ScoreService
	logger logging.Logger
}

func NewVoteService(b Backend, gate *Gate, scores *ScoreService, l logging.Logger) *VoteService {
	return &VoteService{b: b, gate: gate, scores: scores, logger: l.With("module", "votes")}
}

// UpsertResult reports what UpsertVote did to the ledger.
type UpsertResult struct {
	Vote *models.Vote
	// Previous is the value before the call; nil when the vote is new.
	Previous *bool
	IsNew    bool
	// Changed is false when the voter repeated their current vote.
	Changed bool
}

// CastResult is returned to clients after a vote.
type CastResult struct {
	Vote      *models.Vote `json:"vote"`
	VoteCount int64        `json:"voteCount"`
	Changed   bool         `json:"changed"`
}

// FindVote returns voterID's vote on target, or common.ErrorNotFound.
func (s *VoteService) FindVote(ctx context.Context, voterID string, target models.Target) (*models.Vote, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	return s.b.Repos.Votes(s.b.DB).Find(ctx, voterID, target)
}

// UpsertVote creates the vote or flips it in place, keeping its ID. It must
// run inside the transaction that also locked the target.
func (s *VoteService) UpsertVote(ctx context.Context, tx dbx.DBTX, voterID string, target models.Target, isUpvote bool) (*UpsertResult, error) {
	repo := s.b.Repos.Votes(tx)
	existing, err := repo.Find(ctx, voterID, target)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading vote: %w", err)
	}

	if existing == nil {
		at := now()
		v := &models.Vote{
			ID:        newID(),
			VoterID:   voterID,
			Target:    target,
			IsUpvote:  isUpvote,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if err := repo.Create(ctx, v); err != nil {
			return nil, fmt.Errorf("error creating vote: %w", err)
		}
		return &UpsertResult{Vote: v, IsNew: true, Changed: true}, nil
	}

	prev := existing.IsUpvote
	if prev == isUpvote {
		return &UpsertResult{Vote: existing, Previous: &prev}, nil
	}

	at := now()
	if err := repo.SetUpvote(ctx, existing.ID, isUpvote, at); err != nil {
		return nil, fmt.Errorf("error updating vote: %w", err)
	}
	existing.IsUpvote = isUpvote
	existing.UpdatedAt = at
	return &UpsertResult{Vote: existing, Previous: &prev, Changed: true}, nil
}

// content is the part of a bug or comment the ledger needs.
type content struct {
	authorID  string
	voteCount int64
}

func (s *VoteService) lockTarget(ctx context.Context, tx dbx.DBTX, target models.Target) (*content, error) {
	switch target.Kind {
	case models.TargetBug:
		b, err := s.b.Repos.Bugs(tx).GetForUpdate(ctx, target.ID)
		if err != nil {
			return nil, fmt.Errorf("bug %s: %w", target.ID, err)
		}
		return &content{authorID: b.AuthorID, voteCount: b.VoteCount}, nil
	default:
		c, err := s.b.Repos.Comments(tx).GetForUpdate(ctx, target.ID)
		if err != nil {
			return nil, fmt.Errorf("comment %s: %w", target.ID, err)
		}
		return &content{authorID: c.AuthorID, voteCount: c.VoteCount}, nil
	}
}

func (s *VoteService) addVoteCount(ctx context.Context, tx dbx.DBTX, target models.Target, delta int64) error {
	if delta == 0 {
		return nil
	}
	if target.Kind == models.TargetBug {
		return s.b.Repos.Bugs(tx).AddVoteCount(ctx, target.ID, delta)
	}
	return s.b.Repos.Comments(tx).AddVoteCount(ctx, target.ID, delta)
}

// CastVote records voterID's vote on target. Repeating the current vote
// changes nothing; the opposite value toggles it.
func (s *VoteService) CastVote(ctx context.Context, voterID string, target models.Target, isUpvote bool) (*CastResult, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	if err := s.gate.CheckUserAccess(ctx, voterID); err != nil {
		return nil, err
	}

	var res *CastResult
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.lockTarget(ctx, tx, target)
		if err != nil {
			return err
		}
		if c.authorID == voterID {
			return common.ErrSelfVote
		}

		up, err := s.UpsertVote(ctx, tx, voterID, target, isUpvote)
		if err != nil {
			return err
		}
		res = &CastResult{Vote: up.Vote, VoteCount: c.voteCount, Changed: up.Changed}
		if !up.Changed {
			return nil
		}

		next := isUpvote
		delta := int64(score.VoteCountDelta(up.Previous, &next))
		if err := s.addVoteCount(ctx, tx, target, delta); err != nil {
			return fmt.Errorf("error updating vote count: %w", err)
		}
		res.VoteCount += delta

		return s.scores.ApplyVoteEffect(ctx, tx, VoteEffect{
			AuthorID:  c.authorID,
			VoterID:   voterID,
			Kind:      target.Kind,
			IsUpvote:  isUpvote,
			IsNewVote: up.IsNew,
			Previous:  up.Previous,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "vote cast", "voter", voterID, "target", target.String(), "upvote", isUpvote, "changed", res.Changed)
	return res, nil
}

// RemoveVote deletes voterID's vote on target and reverses its score
// effect. Removing a vote that does not exist is not an error and returns
// a nil vote.
func (s *VoteService) RemoveVote(ctx context.Context, voterID string, target models.Target) (*models.Vote, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	if err := s.gate.CheckUserAccess(ctx, voterID); err != nil {
		return nil, err
	}

	var removed *models.Vote
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.lockTarget(ctx, tx, target)
		if err != nil {
			return err
		}

		votes := s.b.Repos.Votes(tx)
		v, err := votes.Find(ctx, voterID, target)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return fmt.Errorf("error reading vote: %w", err)
		}

		if err := votes.Delete(ctx, v.ID); err != nil {
			return fmt.Errorf("error deleting vote: %w", err)
		}
		prev := v.IsUpvote
		if err := s.addVoteCount(ctx, tx, target, int64(score.VoteCountDelta(&prev, nil))); err != nil {
			return fmt.Errorf("error updating vote count: %w", err)
		}
		if err := s.scores.ReverseVote(ctx, tx, c.authorID, voterID, target.Kind, prev); err != nil {
			return err
		}
		removed = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed != nil {
		s.logger.Info(ctx, "vote removed", "voter", voterID, "target", target.String())
	}
	return removed, nil
}

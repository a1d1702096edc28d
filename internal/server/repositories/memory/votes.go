package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

type voteRepo struct{ s *Store }

func (r *voteRepo) Find(_ context.Context, voterID string, target models.Target) (*models.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, v := range r.s.t.votes {
		if v.VoterID == voterID && v.Target == target {
			return &v, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *voteRepo) Create(_ context.Context, vote *models.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, v := range r.s.t.votes {
		if v.ID == vote.ID || (v.VoterID == vote.VoterID && v.Target == vote.Target) {
			return common.ErrAlreadyExists
		}
	}
	r.s.t.votes[vote.ID] = *vote
	return nil
}

func (r *voteRepo) SetUpvote(_ context.Context, id string, isUpvote bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.t.votes[id]
	if !ok {
		return common.ErrorNotFound
	}
	v.IsUpvote = isUpvote
	v.UpdatedAt = at
	r.s.t.votes[id] = v
	return nil
}

func (r *voteRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.votes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.t.votes, id)
	return nil
}

func (r *voteRepo) CountDownvotesByVoter(_ context.Context, voterID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, v := range r.s.t.votes {
		if v.VoterID == voterID && !v.IsUpvote {
			n++
		}
	}
	return n, nil
}

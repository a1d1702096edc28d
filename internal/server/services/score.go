package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/score"
	"github.com/sourcegraph/conc/pool"
)

// ScoreService is the scoring engine. Incremental updates run on the
// caller's transaction handle so they commit or roll back together with the
// ledger change that caused them.
type ScoreService struct {
	b       Backend
	workers int
	logger  logging.Logger
}

func NewScoreService(b Backend, workers int, l logging.Logger) *ScoreService {
	if workers < 1 {
		workers = 1
	}
	return &ScoreService{b: b, workers: workers, logger: l.With("module", "score")}
}

// VoteEffect describes one ledger change for ApplyVoteEffect.
type VoteEffect struct {
	AuthorID  string
	VoterID   string
	Kind      models.TargetKind
	IsUpvote  bool
	IsNewVote bool
	// Previous is the value the vote had before a toggle; nil for new votes.
	Previous *bool
}

// ApplyNewVote credits the author and, for a downvote, penalizes the voter.
func (s *ScoreService) ApplyNewVote(ctx context.Context, tx dbx.DBTX, authorID, voterID string, kind models.TargetKind, isUpvote bool) error {
	return s.apply(ctx, tx, authorID, voterID, score.NewVote(kind.Weights(), isUpvote))
}

// ReverseVote undoes exactly what ApplyNewVote did for the same value.
func (s *ScoreService) ReverseVote(ctx context.Context, tx dbx.DBTX, authorID, voterID string, kind models.TargetKind, isUpvote bool) error {
	return s.apply(ctx, tx, authorID, voterID, score.Reversal(kind.Weights(), isUpvote))
}

// ApplyVoteEffect dispatches a ledger change: a new vote is applied, a
// changed vote is reversed and re-applied, an unchanged vote does nothing.
func (s *ScoreService) ApplyVoteEffect(ctx context.Context, tx dbx.DBTX, e VoteEffect) error {
	if e.IsNewVote {
		return s.ApplyNewVote(ctx, tx, e.AuthorID, e.VoterID, e.Kind, e.IsUpvote)
	}
	if e.Previous == nil || *e.Previous == e.IsUpvote {
		return nil
	}
	if err := s.ReverseVote(ctx, tx, e.AuthorID, e.VoterID, e.Kind, *e.Previous); err != nil {
		return err
	}
	return s.ApplyNewVote(ctx, tx, e.AuthorID, e.VoterID, e.Kind, e.IsUpvote)
}

// apply writes both deltas with atomic increments, in user ID order so that
// two transactions touching the same pair of users cannot deadlock.
func (s *ScoreService) apply(ctx context.Context, tx dbx.DBTX, authorID, voterID string, eff score.Effect) error {
	type change struct {
		role  string
		id    string
		delta score.Points
	}
	changes := []change{{"author", authorID, eff.Author}, {"voter", voterID, eff.Voter}}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].id < changes[j].id })

	repo := s.b.Repos.Users(tx)
	for _, c := range changes {
		if c.delta == 0 {
			continue
		}
		if err := repo.AddScore(ctx, c.id, c.delta); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%s %s not found: %w", c.role, c.id, err)
			}
			return fmt.Errorf("error updating %s score: %w", c.role, err)
		}
		s.logger.Debug(ctx, "score updated", "role", c.role, "user", c.id, "delta", c.delta.String())
	}
	return nil
}

// RecalculateScore rebuilds userID's score from the net vote counts of
// their content and the downvotes they hold in the ledger, overwriting the
// incrementally maintained value.
func (s *ScoreService) RecalculateScore(ctx context.Context, userID string) (score.Points, error) {
	var result score.Points
	err := s.b.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.b.Repos.Users(tx)
		if _, err := users.GetForUpdate(ctx, userID); err != nil {
			return fmt.Errorf("error reading user %s: %w", userID, err)
		}

		bugCounts, err := s.b.Repos.Bugs(tx).VoteCountsByAuthor(ctx, userID)
		if err != nil {
			return fmt.Errorf("error reading bug votes: %w", err)
		}
		commentCounts, err := s.b.Repos.Comments(tx).VoteCountsByAuthor(ctx, userID)
		if err != nil {
			return fmt.Errorf("error reading comment votes: %w", err)
		}
		downvotes, err := s.b.Repos.Votes(tx).CountDownvotesByVoter(ctx, userID)
		if err != nil {
			return fmt.Errorf("error counting downvotes: %w", err)
		}

		result = score.Recalculated(bugCounts, commentCounts, downvotes)
		return users.SetScore(ctx, userID, result)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "score recalculated", "user", userID, "score", result.String())
	return result, nil
}

// RecalcReport summarizes a RecalculateAllScores run.
type RecalcReport struct {
	Users  int `json:"users"`
	Failed int `json:"failed"`
}

// RecalculateAllScores recalculates every user independently on a bounded
// worker pool. There is no snapshot across users. Failures do not stop the
// run; they are counted and returned joined.
func (s *ScoreService) RecalculateAllScores(ctx context.Context) (*RecalcReport, error) {
	ids, err := s.b.Repos.Users(s.b.DB).ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	report := &RecalcReport{Users: len(ids)}
	errs := make([]error, len(ids))

	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for i, id := range ids {
		p.Go(func(ctx context.Context) error {
			if _, err := s.RecalculateScore(ctx, id); err != nil {
				errs[i] = fmt.Errorf("user %s: %w", id, err)
			}
			return nil
		})
	}
	_ = p.Wait()

	for _, e := range errs {
		if e != nil {
			report.Failed++
		}
	}
	s.logger.Info(ctx, "all scores recalculated", "users", report.Users, "failed", report.Failed)
	return report, errors.Join(errs...)
}

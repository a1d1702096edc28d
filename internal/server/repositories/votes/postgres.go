// Package votes provides the PostgreSQL-backed vote ledger.
package votes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, voterID string, target models.Target) (*models.Vote, error) {
	query :=
		`SELECT id, voter_id, target_kind, target_id, is_upvote, created_at, updated_at FROM votes
		 WHERE voter_id = $1 AND target_kind = $2 AND target_id = $3`

	v := &models.Vote{}
	var kind string
	err := r.db.QueryRowContext(ctx, query, voterID, string(target.Kind), target.ID).
		Scan(&v.ID, &v.VoterID, &kind, &v.Target.ID, &v.IsUpvote, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	v.Target.Kind = models.TargetKind(kind)
	return v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, vote *models.Vote) error {
	query :=
		`INSERT INTO votes (id, voter_id, target_kind, target_id, is_upvote, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, vote.ID, vote.VoterID, string(vote.Target.Kind), vote.Target.ID,
		vote.IsUpvote, vote.CreatedAt, vote.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetUpvote(ctx context.Context, id string, isUpvote bool, at time.Time) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE votes SET is_upvote = $2, updated_at = $3 WHERE id = $1`, id, isUpvote, at))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, id))
}

func (r *PostgresRepository) CountDownvotesByVoter(ctx context.Context, voterID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE voter_id = $1 AND NOT is_upvote`, voterID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

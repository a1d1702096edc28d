// Package comments provides the PostgreSQL-backed comment repository.
package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

const commentColumns = `id, bug_id, author_id, text, image_url, created_at, vote_count`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	if err := row.Scan(&c.ID, &c.BugID, &c.AuthorID, &c.Text, &c.ImageURL, &c.CreatedAt, &c.VoteCount); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) error {
	query :=
		`INSERT INTO comments (id, bug_id, author_id, text, image_url, created_at, vote_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, comment.ID, comment.BugID, comment.AuthorID, comment.Text,
		comment.ImageURL, comment.CreatedAt, comment.VoteCount)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) get(ctx context.Context, query, id string) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Comment, error) {
	return r.get(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Comment, error) {
	return r.get(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) ListByBug(ctx context.Context, bugID string) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE bug_id = $1 ORDER BY vote_count DESC, created_at`, bugID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByBug(ctx context.Context, bugID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE bug_id = $1`, bugID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) VoteCountsByAuthor(ctx context.Context, authorID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT vote_count FROM comments WHERE author_id = $1`, authorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var counts []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		counts = append(counts, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return counts, nil
}

func (r *PostgresRepository) Update(ctx context.Context, comment *models.Comment) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE comments SET text = $2, image_url = $3 WHERE id = $1`, comment.ID, comment.Text, comment.ImageURL))
}

func (r *PostgresRepository) AddVoteCount(ctx context.Context, id string, delta int64) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE comments SET vote_count = vote_count + $2 WHERE id = $1`, id, delta))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id))
}

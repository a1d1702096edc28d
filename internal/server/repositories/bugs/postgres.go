// Package bugs provides the PostgreSQL-backed bug repository. Tags are kept
// inline as an ordered JSONB array of {id, name} references.
package bugs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

const bugColumns = `id, author_id, title, description, image_url, created_at, status, tags, vote_count`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBug(row rowScanner) (*models.Bug, error) {
	b := &models.Bug{}
	var tags []byte
	var status string
	if err := row.Scan(&b.ID, &b.AuthorID, &b.Title, &b.Description, &b.ImageURL, &b.CreatedAt, &status, &tags, &b.VoteCount); err != nil {
		return nil, err
	}
	b.Status = models.BugStatus(status)
	b.Tags = []models.Tag{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &b.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of bug %s: %w", b.ID, err)
		}
	}
	return b, nil
}

func encodeTags(tags []models.Tag) (string, error) {
	if tags == nil {
		tags = []models.Tag{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *PostgresRepository) Create(ctx context.Context, bug *models.Bug) error {
	tags, err := encodeTags(bug.Tags)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO bugs (id, author_id, title, description, image_url, created_at, status, tags, vote_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)`

	_, err = r.db.ExecContext(ctx, query, bug.ID, bug.AuthorID, bug.Title, bug.Description, bug.ImageURL,
		bug.CreatedAt, string(bug.Status), tags, bug.VoteCount)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) get(ctx context.Context, query, id string) (*models.Bug, error) {
	b, err := scanBug(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Bug, error) {
	return r.get(ctx, `SELECT `+bugColumns+` FROM bugs WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Bug, error) {
	return r.get(ctx, `SELECT `+bugColumns+` FROM bugs WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) list(ctx context.Context, where string, args ...any) ([]*models.Bug, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bugColumns+` FROM bugs `+where+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Bug{}
	for rows.Next() {
		b, err := scanBug(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Bug, error) {
	return r.list(ctx, "")
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Bug, error) {
	return r.list(ctx, `WHERE author_id = $1`, authorID)
}

func (r *PostgresRepository) ListByTag(ctx context.Context, tagID string) ([]*models.Bug, error) {
	return r.list(ctx, `WHERE tags @> jsonb_build_array(jsonb_build_object('id', $1::text))`, tagID)
}

func (r *PostgresRepository) SearchTitle(ctx context.Context, text string) ([]*models.Bug, error) {
	return r.list(ctx, `WHERE title ILIKE '%' || $1 || '%'`, likeEscaper.Replace(text))
}

func (r *PostgresRepository) VoteCountsByAuthor(ctx context.Context, authorID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT vote_count FROM bugs WHERE author_id = $1`, authorID)
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

func (r *PostgresRepository) Update(ctx context.Context, bug *models.Bug) error {
	tags, err := encodeTags(bug.Tags)
	if err != nil {
		return err
	}
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE bugs SET title = $2, description = $3, image_url = $4, tags = $5::jsonb WHERE id = $1`,
		bug.ID, bug.Title, bug.Description, bug.ImageURL, tags))
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status models.BugStatus) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE bugs SET status = $2 WHERE id = $1`, id, string(status)))
}

func (r *PostgresRepository) AddVoteCount(ctx context.Context, id string, delta int64) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE bugs SET vote_count = vote_count + $2 WHERE id = $1`, id, delta))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx, `DELETE FROM bugs WHERE id = $1`, id))
}

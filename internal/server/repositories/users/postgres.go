// Package users provides the PostgreSQL-backed user repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/score"
)

const userColumns = `id, username, email, score, is_banned, is_moderator, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Score, &u.IsBanned, &u.IsModerator, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, email)
		 VALUES ($1, $2, $3)
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, user.ID, user.Username, user.Email))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) get(ctx context.Context, query, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, username, email string) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET username = $2, email = $3 WHERE id = $1`, id, username, email))
}

func (r *PostgresRepository) AddScore(ctx context.Context, id string, delta score.Points) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET score = score + $2 WHERE id = $1`, id, delta))
}

func (r *PostgresRepository) SetScore(ctx context.Context, id string, value score.Points) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET score = $2 WHERE id = $1`, id, value))
}

func (r *PostgresRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET is_banned = $2 WHERE id = $1`, id, banned))
}

func (r *PostgresRepository) SetModerator(ctx context.Context, id string, moderator bool) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET is_moderator = $2 WHERE id = $1`, id, moderator))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return dbx.CheckAffected(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id))
}

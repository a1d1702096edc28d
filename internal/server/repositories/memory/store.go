// Package memory is an in-process store implementing the same repository
// contracts as the PostgreSQL backend. Transactions are serialized by a
// single writer lock and rolled back from a snapshot when they fail.
//
// Writes must go through WithTx; reads may happen at any time.
package memory

import (
	"context"
	"database/sql"
	"maps"
	"sync"

	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/bugs"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/comments"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/tags"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/users"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/votes"
)

type tables struct {
	users    map[string]models.User
	bugs     map[string]models.Bug
	comments map[string]models.Comment
	votes    map[string]models.Vote
	tags     map[string]models.Tag
}

func newTables() tables {
	return tables{
		users:    map[string]models.User{},
		bugs:     map[string]models.Bug{},
		comments: map[string]models.Comment{},
		votes:    map[string]models.Vote{},
		tags:     map[string]models.Tag{},
	}
}

func (t tables) clone() tables {
	return tables{
		users:    maps.Clone(t.users),
		bugs:     maps.Clone(t.bugs),
		comments: maps.Clone(t.comments),
		votes:    maps.Clone(t.votes),
		tags:     maps.Clone(t.tags),
	}
}

// Store holds every table. It is both the RepositoryManager and the
// Transactor of the in-memory backend.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    tables
}

func NewStore() *Store {
	return &Store{t: newTables()}
}

func (s *Store) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.t.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(ctx, nil)
}

func (s *Store) restore(snapshot tables) {
	s.mu.Lock()
	s.t = snapshot
	s.mu.Unlock()
}

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Users(dbx.DBTX) users.Repository       { return &userRepo{s: s} }
func (s *Store) Bugs(dbx.DBTX) bugs.Repository         { return &bugRepo{s: s} }
func (s *Store) Comments(dbx.DBTX) comments.Repository { return &commentRepo{s: s} }
func (s *Store) Votes(dbx.DBTX) votes.Repository       { return &voteRepo{s: s} }
func (s *Store) Tags(dbx.DBTX) tags.Repository         { return &tagRepo{s: s} }

// Ping always succeeds; it lets the store stand in for a database in
// health checks.
func (s *Store) PingContext(ctx context.Context) error { return ctx.Err() }

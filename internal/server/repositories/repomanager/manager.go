package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/bugs"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/comments"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/tags"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/users"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/votes"
)

// RepositoryManager vends repositories bound to a DBTX, which is either the
// shared handle or the transaction handed out by a dbx.Transactor.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Bugs(db dbx.DBTX) bugs.Repository
	Comments(db dbx.DBTX) comments.Repository
	Votes(db dbx.DBTX) votes.Repository
	Tags(db dbx.DBTX) tags.Repository
}

// Package services contains the server-side business logic of BugRadar:
// the vote ledger, the scoring engine, the moderation gate and the content
// services built on top of them.
package services

import (
	"time"

	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Backend bundles what every service needs to reach the store: a handle
// for plain reads, a Transactor for read-modify-write units and the
// repository manager that binds repositories to either.
type Backend struct {
	DB    dbx.DBTX
	Tx    dbx.Transactor
	Repos repomanager.RepositoryManager
}

var (
	newID = func() string { return uuid.NewString() }
	now   = func() time.Time { return time.Now().UTC() }
)

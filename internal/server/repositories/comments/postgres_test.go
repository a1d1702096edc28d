package comments

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "bug_id", "author_id", "text", "image_url", "created_at", "vote_count"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+comments\s*\(id,\s*bug_id,\s*author_id,\s*text,\s*image_url,\s*created_at,\s*vote_count\)`).
		WithArgs("c1", "b1", "u1", "same here", "", now, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), &models.Comment{ID: "c1", BugID: "b1", AuthorID: "u1", Text: "same here", CreatedAt: now}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`INSERT\s+INTO\s+comments`).WillReturnError(errors.New("fk violation"))

	err := repo.Create(context.Background(), &models.Comment{ID: "c1"})
	assert.EqualError(t, err, "db error: fk violation")
}

func TestGetAndGetForUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+comments\s+WHERE\s+id\s*=\s*\$1$`).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c1", "b1", "u1", "x", "", time.Now(), int64(4)))
	mock.ExpectQuery(`(?s)FROM\s+comments\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).WithArgs("c2").
		WillReturnError(sql.ErrNoRows)

	c, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.VoteCount)

	_, err = repo.GetForUpdate(context.Background(), "c2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByBug_OrderedByVotes(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+bug_id\s*=\s*\$1\s+ORDER\s+BY\s+vote_count\s+DESC`).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c2", "b1", "u2", "top", "", time.Now(), int64(9)).
			AddRow("c1", "b1", "u1", "low", "", time.Now(), int64(-1)))

	list, err := repo.ListByBug(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
}

func TestCountByBug(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+comments\s+WHERE\s+bug_id\s*=\s*\$1`).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.CountByBug(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestVoteCountsByAuthor(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT\s+vote_count\s+FROM\s+comments\s+WHERE\s+author_id`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"vote_count"}).AddRow(int64(1)))

	counts, err := repo.VoteCountsByAuthor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, counts)
}

func TestMutations(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE\s+comments\s+SET\s+text\s*=\s*\$2,\s*image_url\s*=\s*\$3`).WithArgs("c1", "edited", "").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+comments\s+SET\s+vote_count\s*=\s*vote_count\s*\+\s*\$2`).WithArgs("c1", int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+comments`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(ctx, &models.Comment{ID: "c1", Text: "edited"}))
	require.NoError(t, repo.AddVoteCount(ctx, "c1", 2))
	require.NoError(t, repo.Delete(ctx, "c1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

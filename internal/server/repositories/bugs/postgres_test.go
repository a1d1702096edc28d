package bugs

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

var cols = []string{"id", "author_id", "title", "description", "image_url", "created_at", "status", "tags", "vote_count"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_EncodesTags(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+bugs\s*\(id,\s*author_id,.*\)\s*VALUES\s*\(\$1,.*\$8::jsonb,\s*\$9\)$`).
		WithArgs("b1", "u1", "Crash", "on start", "", now, "RECEIVED", `[{"id":"t1","name":"ui"}]`, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Bug{
		ID: "b1", AuthorID: "u1", Title: "Crash", Description: "on start", CreatedAt: now,
		Status: models.StatusReceived, Tags: []models.Tag{{ID: "t1", Name: "ui"}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NilTagsStoredAsEmptyArray(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+bugs`).
		WithArgs("b1", "u1", "t", "", "", sqlmock.AnyArg(), "RECEIVED", `[]`, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), &models.Bug{ID: "b1", AuthorID: "u1", Title: "t", Status: models.StatusReceived}))
}

func TestGet_DecodesTagsInOrder(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+bugs\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "u1", "Crash", "", "", time.Now(), "IN_PROGRESS",
			[]byte(`[{"id":"t2","name":"zeta"},{"id":"t1","name":"alpha"}]`), int64(-3)))

	b, err := repo.Get(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, b.Status)
	assert.Equal(t, []models.Tag{{ID: "t2", Name: "zeta"}, {ID: "t1", Name: "alpha"}}, b.Tags)
	assert.Equal(t, int64(-3), b.VoteCount)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+bugs`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "b1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetForUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+bugs\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "u1", "t", "", "", time.Now(), "SOLVED", []byte(`[]`), int64(0)))

	b, err := repo.GetForUpdate(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSolved, b.Status)
	assert.Empty(t, b.Tags)
}

func TestListVariants(t *testing.T) {
	tests := []struct {
		name  string
		query string
		arg   any
		call  func(r *PostgresRepository) ([]*models.Bug, error)
	}{
		{"all", `(?s)FROM\s+bugs\s+ORDER\s+BY\s+created_at\s+DESC`, nil,
			func(r *PostgresRepository) ([]*models.Bug, error) { return r.List(context.Background()) }},
		{"by author", `(?s)WHERE\s+author_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`, "u1",
			func(r *PostgresRepository) ([]*models.Bug, error) { return r.ListByAuthor(context.Background(), "u1") }},
		{"by tag", `(?s)WHERE\s+tags\s+@>\s+jsonb_build_array\(jsonb_build_object\('id',\s*\$1::text\)\)`, "t1",
			func(r *PostgresRepository) ([]*models.Bug, error) { return r.ListByTag(context.Background(), "t1") }},
		{"search escapes wildcards", `(?s)WHERE\s+title\s+ILIKE\s+'%'\s*\|\|\s*\$1\s*\|\|\s*'%'`, `100\%`,
			func(r *PostgresRepository) ([]*models.Bug, error) { return r.SearchTitle(context.Background(), "100%") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			exp := mock.ExpectQuery(tt.query)
			if tt.arg != nil {
				exp = exp.WithArgs(tt.arg)
			}
			exp.WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "u1", "t", "", "", time.Now(), "RECEIVED", []byte(`[]`), int64(1)))

			list, err := tt.call(repo)
			require.NoError(t, err)
			require.Len(t, list, 1)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+bugs`).WillReturnRows(sqlmock.NewRows(cols))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestVoteCountsByAuthor(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT\s+vote_count\s+FROM\s+bugs\s+WHERE\s+author_id\s*=\s*\$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"vote_count"}).AddRow(int64(2)).AddRow(int64(-1)))

	counts, err := repo.VoteCountsByAuthor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, -1}, counts)
}

func TestMutations(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE\s+bugs\s+SET\s+title\s*=\s*\$2,\s*description\s*=\s*\$3,\s*image_url\s*=\s*\$4,\s*tags\s*=\s*\$5::jsonb`).
		WithArgs("b1", "T", "D", "img", `[{"id":"t1","name":"x"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+bugs\s+SET\s+status\s*=\s*\$2`).WithArgs("b1", "SOLVED").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+bugs\s+SET\s+vote_count\s*=\s*vote_count\s*\+\s*\$2`).WithArgs("b1", int64(-2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+bugs`).WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(ctx, &models.Bug{ID: "b1", Title: "T", Description: "D", ImageURL: "img", Tags: []models.Tag{{ID: "t1", Name: "x"}}}))
	require.NoError(t, repo.SetStatus(ctx, "b1", models.StatusSolved))
	require.NoError(t, repo.AddVoteCount(ctx, "b1", -2))
	assert.ErrorIs(t, repo.Delete(ctx, "b1"), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddVoteCount_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`UPDATE\s+bugs`).WillReturnError(errors.New("lock timeout"))

	err := repo.AddVoteCount(context.Background(), "b1", 1)
	assert.EqualError(t, err, "db error: lock timeout")
}

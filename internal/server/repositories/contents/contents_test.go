package contents

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/fil"
	domain "github.com/dmitrijs2005/datamarket/internal/models"
	"github.com/dmitrijs2005/datamarket/internal/server/models"
)

var storedAt = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

func content(cid string) *models.Content {
	return &models.Content{
		CID: cid, Owner: "0xA", Size: 3, StorageKey: "content/" + cid, StoredAt: storedAt,
		Metadata: domain.UploadMetadata{
			Title: "T", Description: "D", Category: domain.CategoryResearch,
			Price: fil.MustParse("2"), FileName: "f.csv", FileSize: 3, CreatedAt: storedAt,
		},
	}
}

func TestMemory_CreateGet(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, content("bafk1")))
	require.ErrorIs(t, r.Create(ctx, content("bafk1")), common.ErrorAlreadyExists)

	got, err := r.Get(ctx, "bafk1")
	require.NoError(t, err)
	assert.Equal(t, "content/bafk1", got.StorageKey)

	_, err = r.Get(ctx, "bafk2")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgres_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+contents\b`).
		WithArgs("bafk1", "0xA", int64(3), "content/bafk1", storedAt,
			"T", "D", "research", "2000000000000000000", "f.csv", storedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), content("bafk1")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Create_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT`).WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, repo.Create(context.Background(), content("bafk1")), common.ErrorAlreadyExists)
}

func TestPostgres_Create_Error(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT`).WillReturnError(errors.New("db down"))
	err := repo.Create(context.Background(), content("bafk1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestPostgres_Get(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contents WHERE cid=$1`)).
		WithArgs("bafk1").
		WillReturnRows(sqlmock.NewRows([]string{
			"cid", "owner", "size", "storage_key", "stored_at",
			"title", "description", "category", "price", "file_name", "created_at",
		}).AddRow("bafk1", "0xA", int64(3), "content/bafk1", storedAt, "T", "D", "research", "2000000000000000000", "f.csv", storedAt))

	got, err := repo.Get(context.Background(), "bafk1")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryResearch, got.Metadata.Category)
	assert.True(t, got.Metadata.Price.Equals(fil.MustParse("2")))
	assert.Equal(t, int64(3), got.Metadata.FileSize)
}

func TestPostgres_Get_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM contents`).WillReturnError(sql.ErrNoRows)
	_, err := repo.Get(context.Background(), "bafk1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

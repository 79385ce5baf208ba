package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/ridewise/internal/core/ports"
)

func newMock(t *testing.T) (*KVRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewKVRepository(db), mock
}

func TestKVRepository_GetItem(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_items WHERE key = $1`)).
		WithArgs("ridewise-data").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"schemaVersion":2}`)))

	got, err := repo.GetItem(context.Background(), "ridewise-data")
	require.NoError(t, err)
	assert.Equal(t, `{"schemaVersion":2}`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_GetItemMissing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_items WHERE key = $1`)).
		WithArgs("ridewise-data").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetItem(context.Background(), "ridewise-data")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestKVRepository_SetItemUpserts(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_items (key, value, updated_at)`)).
		WithArgs("ridewise-data", []byte("{}")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetItem(context.Background(), "ridewise-data", []byte("{}")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_SetItemMissingTable(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_items`)).
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "kv_items" does not exist`})

	err := repo.SetItem(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run migrations")
}

func TestKVRepository_RemoveItem(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_items WHERE key = $1`)).
		WithArgs("__ridewise_test__").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RemoveItem(context.Background(), "__ridewise_test__"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

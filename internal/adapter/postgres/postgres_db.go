package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pressly/goose"

	"github.com/sm8ta/ridewise/internal/core/ports"
)

// KVRepository stores documents in the kv_items table.
type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{
		db,
	}
}

// Migrate applies the goose migrations found in dir.
func Migrate(db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *KVRepository) GetItem(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_items WHERE key = $1`

	var value []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, wrapPQ(err)
	}
	return value, nil
}

func (r *KVRepository) SetItem(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_items (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return wrapPQ(err)
	}
	return nil
}

func (r *KVRepository) RemoveItem(ctx context.Context, key string) error {
	query := `DELETE FROM kv_items WHERE key = $1`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return wrapPQ(err)
	}
	return nil
}

func wrapPQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P01":
			return fmt.Errorf("kv_items table is missing, run migrations: %w", err)
		case "53100", "53200":
			return fmt.Errorf("database out of resources: %w", err)
		}
	}
	return err
}

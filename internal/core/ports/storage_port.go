package ports

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// KVStorage is a string-keyed blob store. GetItem returns ErrKeyNotFound
// for keys that were never written or have been removed.
type KVStorage interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// BackupStorage keeps exported documents outside the primary store.
type BackupStorage interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

package ports

import "time"

// CachePort stores short-lived lookups. Get returns ErrKeyNotFound on a miss.
type CachePort interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

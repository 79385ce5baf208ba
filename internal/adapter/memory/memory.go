package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sm8ta/ridewise/internal/core/ports"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store keeps items in process memory. It serves both as a KVStorage
// backend and as a CachePort when no Redis is configured.
type Store struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func New() *Store {
	return &Store{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func (s *Store) GetItem(_ context.Context, key string) ([]byte, error) {
	return s.Get(key)
}

func (s *Store) SetItem(_ context.Context, key string, value []byte) error {
	return s.Set(key, value, 0)
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	return s.Delete(key)
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, ports.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value under key. A zero ttl never expires.
func (s *Store) Set(key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

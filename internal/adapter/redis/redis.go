package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sm8ta/ridewise/internal/core/ports"
)

// RedisAdapter serves as the lookup cache and, when selected, as the
// document store.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Get(key string) ([]byte, error) {
	return r.GetItem(context.Background(), key)
}

func (r *RedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	return r.client.Set(context.Background(), key, value, ttl).Err()
}

func (r *RedisAdapter) Delete(key string) error {
	return r.RemoveItem(context.Background(), key)
}

func (r *RedisAdapter) GetItem(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisAdapter) SetItem(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisAdapter) RemoveItem(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

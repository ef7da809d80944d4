package mapping

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the table in a single hash, one field per row.
// HSET is atomic per field, which makes Put an exclusive update.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed mapping store under key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "connected_accounts"
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

func (r *RedisStore) Load(ctx context.Context) (Mapping, error) {
	vals, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	m := make(Mapping, len(vals))
	for k, v := range vals {
		m[k] = v
	}
	return m, nil
}

func (r *RedisStore) Put(ctx context.Context, rowID, accountID string) error {
	if rowID == "" || accountID == "" {
		return fmt.Errorf("mapping: missing row_id or account_id")
	}

	if err := r.client.HSet(ctx, r.key, rowID, accountID).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, rowID string) (string, error) {
	val, err := r.client.HGet(ctx, r.key, rowID).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return val, nil
}

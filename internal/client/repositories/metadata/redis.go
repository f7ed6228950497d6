package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps all pairs as fields of one hash named after the
// namespace, so Clear is a single DEL.
type RedisRepository struct {
	rdb       redis.Cmdable
	namespace string
}

var _ Repository = (*RedisRepository)(nil)

func NewRedisRepository(rdb redis.Cmdable, namespace string) *RedisRepository {
	if namespace == "" {
		namespace = "gophtodo"
	}
	return &RedisRepository{rdb: rdb, namespace: namespace}
}

// NewRedisClient configures a Redis client from a URL and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.HGet(ctx, r.namespace, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return v, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.HSet(ctx, r.namespace, key, value).Err(); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.HDel(ctx, r.namespace, key).Err(); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context) (map[string][]byte, error) {
	m, err := r.rdb.HGetAll(ctx, r.namespace).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = []byte(v)
	}
	return out, nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.namespace).Err(); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

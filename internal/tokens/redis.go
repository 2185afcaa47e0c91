// Package tokens keeps a registry of issued phone-upload tokens.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "phone_upload:"

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redisURL and pings it.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Issue(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+token, time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store upload token: %w", err)
	}
	return nil
}

func (s *RedisStore) Valid(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, keyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up upload token: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

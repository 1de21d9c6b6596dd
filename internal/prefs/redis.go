package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisURL = "redis://localhost:6379"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	URL    string
	Prefix string
	TTL    time.Duration
}

// RedisStore keeps entries in Redis under an optional key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// OpenRedis parses the URL and verifies connectivity with PING.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	u := strings.TrimSpace(opts.URL)
	if u == "" {
		u = defaultRedisURL
	}
	parsed, err := redis.ParseURL(u)
	if err != nil {
		return nil, fmt.Errorf("prefs: invalid redis url: %w", err)
	}
	client := redis.NewClient(parsed)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("prefs: redis ping: %w", err)
	}
	return NewRedisStore(client, opts.Prefix, opts.TTL), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("prefs: redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("prefs: redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

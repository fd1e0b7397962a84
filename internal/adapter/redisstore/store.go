// Package redisstore persists small JSON records as Redis string keys.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every record key written by this service.
const KeyPrefix = "volcano-alert:"

// Connect creates a Redis client and verifies it with a PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Store keeps a single record of type T under KeyPrefix+name.
type Store[T any] struct {
	client   redis.Cmdable
	key      string
	fallback func() T
	logger   *slog.Logger
}

// New creates a store for the named record. fallback supplies the value
// returned when the key is absent or holds an undecodable value.
func New[T any](client redis.Cmdable, name string, fallback func() T, logger *slog.Logger) *Store[T] {
	key := KeyPrefix + name
	return &Store[T]{
		client:   client,
		key:      key,
		fallback: fallback,
		logger:   logger.With("component", "redisstore", "key", key),
	}
}

// Key returns the Redis key holding the record.
func (s *Store[T]) Key() string { return s.key }

// Load returns the stored record. A missing or corrupt value yields the
// fallback; connection failures are returned so the caller can abort.
func (s *Store[T]) Load(ctx context.Context) (T, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.fallback(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("record corrupt, using default", "error", err)
		return s.fallback(), nil
	}
	return v, nil
}

// Save replaces the stored record. SET is atomic on the server.
func (s *Store[T]) Save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	s.logger.Debug("record saved")
	return nil
}

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotConnected = errors.New("redis: client not initialized")

// Store is a key/value cache on top of a Redis client. Every key is prefixed
// with the instance name so several deployments can share one server.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore wraps rdb. A nil client yields a store whose calls all fail with
// ErrNotConnected, which cache users treat as a miss.
func NewStore(rdb *redis.Client, instance string) *Store {
	prefix := ""
	if instance != "" {
		prefix = instance + ":"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) ready() error {
	if s.rdb == nil {
		return ErrNotConnected
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	val, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(key), value, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.rdb.Del(ctx, full...).Err()
}

// IncrBy atomically adds delta. IncrBy(key, 0) reads a counter without
// changing it and initializes a missing counter to zero.
func (s *Store) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.rdb.IncrBy(ctx, s.key(key), delta).Result()
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	return n > 0, err
}

// Ping performs a health check on the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.rdb.Ping(ctx).Err()
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCommands is the subset of the go-redis client the store needs.
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type RedisStore struct {
	client redisCommands
}

func NewRedisStore(client redisCommands) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

func (s *RedisStore) Save(ctx context.Context, sid string, accountID int64, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sid), accountID, ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, sid string) (int64, error) {
	id, err := s.client.Get(ctx, sessionKey(sid)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

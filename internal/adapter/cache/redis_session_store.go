package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore maps opaque cookie tokens to principal snapshots.
// Get slides the expiry so active sessions stay alive.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, p entity.Principal) (string, error) {
	token := uuid.NewString()
	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, "session:"+token, body, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (entity.Principal, bool, error) {
	val, err := s.rdb.Get(ctx, "session:"+token).Result()
	if err == redis.Nil {
		return entity.Principal{}, false, nil
	}
	if err != nil {
		return entity.Principal{}, false, err
	}

	var p entity.Principal
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return entity.Principal{}, false, err
	}
	_ = s.rdb.Expire(ctx, "session:"+token, s.ttl).Err()
	return p, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, "session:"+token).Err()
}

var _ usecase.SessionStore = (*RedisSessionStore)(nil)

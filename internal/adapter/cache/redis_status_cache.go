package cache

import (
	"context"
	"time"

	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisStatusCache mirrors order payment status so the orders listing
// sees processor updates without rereading rows the moment they change.
type RedisStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatusCache(rdb *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func (r *RedisStatusCache) SetPaymentStatus(ctx context.Context, orderID, status string) error {
	return r.rdb.Set(ctx, "order:paystatus:"+orderID, status, r.ttl).Err()
}

func (r *RedisStatusCache) GetPaymentStatus(ctx context.Context, orderID string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, "order:paystatus:"+orderID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.StatusCache = (*RedisStatusCache)(nil)

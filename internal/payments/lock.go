package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL = 30 * time.Second
	lockKeyPrefix  = "influencehub:payment-lock:"
)

// ErrLockHeld is returned when another request owns the order lock.
var ErrLockHeld = errors.New("order lock held")

// OrderLocker serializes payment attempts against the same order.
type OrderLocker interface {
	Lock(ctx context.Context, orderID uuid.UUID) (unlock func(), err error)
}

type noopLocker struct{}

// NoopLocker returns a locker that never blocks. The conditional order update
// still rejects a second payment.
func NoopLocker() OrderLocker {
	return noopLocker{}
}

func (noopLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}

// redisStore defines the operations used by RedisLocker.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLocker implements OrderLocker using Redis SETNX + TTL.
type RedisLocker struct {
	client redisStore
	ttl    time.Duration
}

func NewRedisLocker(client redisStore, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for order lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}, nil
}

func lockKey(orderID uuid.UUID) string {
	return lockKeyPrefix + orderID.String()
}

func (l *RedisLocker) Lock(ctx context.Context, orderID uuid.UUID) (func(), error) {
	key := lockKey(orderID)
	owner := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		// release outlives a cancelled request context
		_ = l.release(context.WithoutCancel(ctx), key, owner)
	}, nil
}

// release frees the lock only if the owner value still matches.
func (l *RedisLocker) release(ctx context.Context, key, owner string) error {
	value, err := l.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != owner {
		return nil
	}
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}

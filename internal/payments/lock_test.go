package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	store := newFakeRedis()
	locker, err := NewRedisLocker(store, 0)
	require.NoError(t, err)

	orderID := uuid.New()
	unlock, err := locker.Lock(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, store.ttls[lockKey(orderID)])

	_, err = locker.Lock(context.Background(), orderID)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := locker.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	other()

	unlock()
	assert.NotContains(t, store.values, lockKey(orderID))

	again, err := locker.Lock(context.Background(), orderID)
	require.NoError(t, err)
	again()
}

func TestRedisLockerReleaseKeepsForeignOwner(t *testing.T) {
	store := newFakeRedis()
	locker, err := NewRedisLocker(store, time.Minute)
	require.NoError(t, err)

	orderID := uuid.New()
	unlock, err := locker.Lock(context.Background(), orderID)
	require.NoError(t, err)

	// lock expired and was taken by someone else
	store.values[lockKey(orderID)] = "someone-else"
	unlock()

	assert.Equal(t, "someone-else", store.values[lockKey(orderID)])
}

func TestRedisLockerSurfacesStoreErrors(t *testing.T) {
	store := newFakeRedis()
	store.setErr = errors.New("connection refused")
	locker, err := NewRedisLocker(store, time.Minute)
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockHeld)
}

func TestNewRedisLockerRequiresClient(t *testing.T) {
	_, err := NewRedisLocker(nil, time.Second)
	assert.Error(t, err)
}

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	// 1. Acquire Lock
	unlock, err := locker.Lock(ctx, "session-1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:session-1"), "Lock key should be set in Redis")

	// 2. Release Lock
	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:session-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")

	unlock, err := first.Lock(context.Background(), "shared", 5*time.Second)
	require.NoError(t, err)

	// Second runner on the same session gives up when its context expires.
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx, "shared", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// After release it is acquired.
	require.NoError(t, unlock(context.Background()))
	unlock2, err := second.Lock(context.Background(), "shared", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(context.Background()))
}

func TestRedisLocker_StaleUnlockKeepsNewOwner(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "session-2", time.Second)
	require.NoError(t, err)

	// The lock expires and another runner takes it.
	mr.FastForward(2 * time.Second)
	unlockNew, err := locker.Lock(ctx, "session-2", 5*time.Second)
	require.NoError(t, err)

	// The stale release must not free the new owner's lock.
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:session-2"))

	require.NoError(t, unlockNew(ctx))
	assert.False(t, mr.Exists("test:lock:session-2"))
}

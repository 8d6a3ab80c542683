package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func report(id string, finished time.Time) *domain.Report {
	return domain.NewReport(id, "Food", domain.Exhausted(5), nil, finished.Add(-time.Second), finished)
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunReportStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_ListOrder(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, report("old", base)))
	require.NoError(t, store.Save(ctx, report("new", base.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, report("mid", base.Add(30*time.Second))))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := redis.NewFromClient(client,
		redis.WithTTL(time.Second),
		redis.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	// 1. Save
	require.NoError(t, store.Save(ctx, report("run-ttl", now)))

	// 2. Verify List (immediately)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "run-ttl")

	// 3. Fast forward: the key expires in redis, the clock moves past the TTL
	mr.FastForward(2 * time.Second)
	now = now.Add(2 * time.Second)

	// 4. Load fails
	_, err = store.Load(ctx, "run-ttl")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	// 5. The index is pruned lazily
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, report("my-run", time.Now())))

	assert.True(t, mr.Exists("custom:app:my-run"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")
}

func TestRedisStore_RejectsAnonymousReport(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)

	err := store.Save(context.Background(), &domain.Report{Root: "Food"})
	assert.Error(t, err)
}

func TestRedisStore_IndexNameIsReserved(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, report("run-1", time.Now())))
	assert.Error(t, store.Save(ctx, report("index", time.Now())))

	assert.Equal(t, "zset", mr.Type("canopy:report:index"))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, ids)

	_, err = store.Load(ctx, "index")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, _ := newClient(t)
	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	assert.NotNil(t, store.Client())

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheRepository(client, nil), mr, client
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, mr, _ := newCacheRepo(t)
	ctx := context.Background()

	var miss map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "avail:b1:2025-03-03", &miss), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "avail:b1:2025-03-03", map[string]int{"totalSlots": 14}, time.Minute))
	var hit map[string]int
	require.NoError(t, repo.Get(ctx, "avail:b1:2025-03-03", &hit))
	assert.Equal(t, 14, hit["totalSlots"])

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "avail:b1:2025-03-03", &hit), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDropsCorruptEntries(t *testing.T) {
	repo, mr, _ := newCacheRepo(t)
	require.NoError(t, mr.Set("avail:b1:2025-03-03", "{not-json"))

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(context.Background(), "avail:b1:2025-03-03", &dest), appErrors.ErrCacheMiss)
	assert.False(t, mr.Exists("avail:b1:2025-03-03"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, mr, _ := newCacheRepo(t)
	ctx := context.Background()
	for _, key := range []string{"avail:b1:2025-03-03", "avail:b1:2025-03-04", "avail:b2:2025-03-03"} {
		require.NoError(t, repo.Set(ctx, key, 1, time.Minute))
	}

	require.NoError(t, repo.DeleteByPattern(ctx, "avail:b1:*"))
	assert.False(t, mr.Exists("avail:b1:2025-03-03"))
	assert.False(t, mr.Exists("avail:b1:2025-03-04"))
	assert.True(t, mr.Exists("avail:b2:2025-03-03"))
}

func TestCacheRepositoryPublish(t *testing.T) {
	repo, _, client := newCacheRepo(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "waitlist:offers")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Publish(ctx, "waitlist:offers", map[string]string{"entry_id": "w1"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entry_id":"w1"}`, msg.Payload)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest int
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Second))
	assert.Error(t, repo.Publish(context.Background(), "c", 1))
}

func TestCacheRepositoryGuardedSet(t *testing.T) {
	repo, mr, _ := newCacheRepo(t)
	ctx := context.Background()
	guards := []string{"availgen:all", "availgen:b1"}

	gen, err := repo.Counters(ctx, guards...)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, gen)

	stored, err := repo.SetGuarded(ctx, "avail:b1:2025-03-03", map[string]int{"totalSlots": 14}, time.Minute, guards, gen)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, mr.Exists("avail:b1:2025-03-03"))

	require.NoError(t, repo.Incr(ctx, "availgen:b1"))
	stored, err = repo.SetGuarded(ctx, "avail:b1:2025-03-04", map[string]int{"totalSlots": 14}, time.Minute, guards, gen)
	require.NoError(t, err)
	assert.False(t, stored, "a bumped guard must block the write")
	assert.False(t, mr.Exists("avail:b1:2025-03-04"))

	gen, err = repo.Counters(ctx, guards...)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, gen)

	_, err = repo.SetGuarded(ctx, "avail:b1:2025-03-04", 1, time.Minute, guards, []int64{0})
	assert.Error(t, err)
}

func TestCacheRepositoryCountersWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	gen, err := repo.Counters(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, gen)
	require.NoError(t, repo.Incr(context.Background(), "a"))
	stored, err := repo.SetGuarded(context.Background(), "k", 1, time.Minute, []string{"a"}, []int64{0})
	require.NoError(t, err)
	assert.False(t, stored)
}

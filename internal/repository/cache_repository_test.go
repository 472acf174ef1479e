package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, nil), mr
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "seating:candidates:room-1:v1:0:0:", []string{"s1", "s2"}, time.Minute))

	var got []string
	require.NoError(t, repo.Get(ctx, "seating:candidates:room-1:v1:0:0:", &got))
	assert.Equal(t, []string{"s1", "s2"}, got)

	mr.FastForward(2 * time.Minute)
	err := repo.Get(ctx, "seating:candidates:room-1:v1:0:0:", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryMissAndCorruptEntry(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	var got []string
	assert.ErrorIs(t, repo.Get(ctx, "absent", &got), appErrors.ErrCacheMiss)

	require.NoError(t, mr.Set("broken", "{not json"))
	assert.ErrorIs(t, repo.Get(ctx, "broken", &got), appErrors.ErrCacheMiss)
	assert.False(t, mr.Exists("broken"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "seating:candidates:room-1:v1:0:0:", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "seating:candidates:room-1:v1:1:1:", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "seating:candidates:room-2:v1:0:0:", 1, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "seating:candidates:room-1:*"))
	assert.False(t, mr.Exists("seating:candidates:room-1:v1:0:0:"))
	assert.False(t, mr.Exists("seating:candidates:room-1:v1:1:1:"))
	assert.True(t, mr.Exists("seating:candidates:room-2:v1:0:0:"))

	require.NoError(t, repo.DeleteByPattern(ctx, "nothing:*"))
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var got int
	assert.ErrorIs(t, repo.Get(ctx, "k", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", 1, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.NoError(t, repo.Close())
}

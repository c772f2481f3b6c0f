package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/cogbot"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestCooldown_Try(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	defer mem.Close()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cd := NewCooldown(mem, time.Minute)
	cd.now = clock.now

	left, err := cd.Try(ctx, "stats:42")
	require.NoError(t, err)
	assert.Zero(t, left)

	clock.t = clock.t.Add(15 * time.Second)
	left, err = cd.Try(ctx, "stats:42")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, left)

	t.Run("keys are independent", func(t *testing.T) {
		left, err := cd.Try(ctx, "stats:43")
		require.NoError(t, err)
		assert.Zero(t, left)
	})

	t.Run("window ends", func(t *testing.T) {
		clock.t = clock.t.Add(46 * time.Second)
		left, err := cd.Try(ctx, "stats:42")
		require.NoError(t, err)
		assert.Zero(t, left)
	})

	t.Run("reset", func(t *testing.T) {
		require.NoError(t, cd.Reset(ctx, "stats:42"))
		left, err := cd.Try(ctx, "stats:42")
		require.NoError(t, err)
		assert.Zero(t, left)
	})
}

func TestCooldown_ZeroPeriod(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	defer mem.Close()

	cd := NewCooldown(mem, 0)
	for i := 0; i < 3; i++ {
		left, err := cd.Try(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, left)
	}
	assert.Zero(t, mem.Len())
}

func TestCooldown_SharedThroughRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	a := NewCooldown(NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "cd:"), time.Minute)
	b := NewCooldown(NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "cd:"), time.Minute)

	left, err := a.Try(ctx, "stats:1")
	require.NoError(t, err)
	assert.Zero(t, left)

	left, err = b.Try(ctx, "stats:1")
	require.NoError(t, err)
	assert.Greater(t, left, time.Duration(0))
	assert.LessOrEqual(t, left, time.Minute)
}

type failingCache struct{ cogbot.Cache }

func (failingCache) Get(context.Context, string) ([]byte, error) {
	return nil, cogbot.ErrCacheUnavailable
}

func TestCooldown_CacheError(t *testing.T) {
	cd := NewCooldown(failingCache{}, time.Minute)
	_, err := cd.Try(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cogbot.ErrCacheUnavailable))
}

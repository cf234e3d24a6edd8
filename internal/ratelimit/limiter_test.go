package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestWindow(t *testing.T, limit int, window time.Duration) *SlidingWindow {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSlidingWindow(client, limit, window)
}

func TestSlidingWindow_AllowsUpToLimitThenDenies(t *testing.T) {
	t.Parallel()

	limiter := newTestWindow(t, 20, time.Minute)
	ctx := context.Background()
	before := time.Now()

	for i := 0; i < 20; i++ {
		res, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		require.True(t, res.Allowed, "call %d should be within quota", i+1)
		require.Equal(t, 20-(i+1), res.Remaining)
	}

	res, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)
	require.True(t, res.ResetAt.After(before))
	require.True(t, res.ResetAt.Before(before.Add(2*time.Minute)))
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := newTestWindow(t, 1, time.Minute)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, "client-b")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestSlidingWindow_QuotaReopensAfterWindow(t *testing.T) {
	t.Parallel()

	limiter := newTestWindow(t, 2, 50*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	res, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	time.Sleep(60 * time.Millisecond)

	res, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, res.Allowed, "old entries should have slid out of the window")
}

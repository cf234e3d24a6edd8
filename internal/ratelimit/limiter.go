package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result reports the limiter's verdict for one call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether a request is within quota. Implemented by the
// Redis-backed sliding window; handlers and tests may substitute their own.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// SlidingWindow counts requests per client key inside a continuously advancing
// window. The gate itself is stateless: each call trims expired entries and
// recounts inside one Redis transaction, so concurrent callers agree on the
// verdict.
type SlidingWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewSlidingWindow constructs the limiter.
func NewSlidingWindow(client *redis.Client, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{client: client, limit: limit, window: window}
}

// Allow registers the call under key and reports whether it stays within
// quota. Remaining never goes below zero; ResetAt is when the oldest counted
// entry leaves the window.
func (l *SlidingWindow) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := "ratelimit:" + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixMilli(), 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(countCmd.Val())
	resetAt := now.Add(l.window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		resetAt = time.UnixMilli(int64(oldest[0].Score)).Add(l.window)
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

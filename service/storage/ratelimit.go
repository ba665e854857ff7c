package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "vconnct:rate:"

// RateLimiter is a fixed-window counter in redis, applied to the message
// endpoints ahead of authentication.
//
// A nil *RateLimiter disables limiting (no redis configured).
type RateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int64, window time.Duration) *RateLimiter {
	if rdb == nil || limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow counts a hit for key and reports whether it is inside the window
// budget. Fails open on redis errors: limiting is protection, not correctness.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	k := rateKeyPrefix + key

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, errors.Wrap(err, "rate limit incr")
	}
	return incr.Val() <= l.limit, nil
}

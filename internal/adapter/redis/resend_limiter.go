package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	// Defaults mirror the credential store's own resend throttle so we
	// reject locally before burning its quota: 3 emails per address per
	// 15 minutes.
	defaultResendLimit  = 3
	defaultResendWindow = 15 * time.Minute
)

// ResendLimiter is a fixed-window counter per email address, shared across
// service instances through Redis.
type ResendLimiter struct {
	rdb    *goredis.Client
	limit  int
	window time.Duration
}

// NewResendLimiter creates a limiter with the default limit and window.
func NewResendLimiter(rdb *goredis.Client) *ResendLimiter {
	return &ResendLimiter{rdb: rdb, limit: defaultResendLimit, window: defaultResendWindow}
}

// NewResendLimiterWithConfig creates a limiter with an explicit limit/window.
func NewResendLimiterWithConfig(rdb *goredis.Client, limit int, window time.Duration) *ResendLimiter {
	return &ResendLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow consumes one resend slot for the address. Returns false once the
// window's limit is exhausted. The first request of a window sets the expiry,
// so the window is anchored at the first resend, not the last.
func (l *ResendLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := "resend_limit:" + email

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("resend limit check failed: %w", err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set resend limit expiry: %w", err)
		}
	}

	return count <= int64(l.limit), nil
}

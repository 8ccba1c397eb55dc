package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "attempts:"

// attemptScript counts an attempt and opens the window in one step. A counter left without
// an expiry, by an older writer or a manual edit, gets one on its next attempt.
const attemptScript = `
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`

// RedisLimiter counts attempts per key in fixed windows stored in Redis.
type RedisLimiter struct {
	rdb    redis.Scripter
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb redis.Scripter, limit int, window time.Duration) RedisLimiter {
	return RedisLimiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (l RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Eval(ctx, attemptScript, []string{keyPrefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("counting attempt: %w", err)
	}

	return n <= l.limit, nil
}

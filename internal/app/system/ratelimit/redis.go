package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Limiter backed by INCR/EXPIRE counters, shared by every
// instance pointed at the same server.
type Redis struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

// NewRedis returns a Redis limiter. Keys are stored as prefix+key.
func NewRedis(client redis.Cmdable, prefix string, limit int, window time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow increments the counter for key, starting its window on the first hit.
func (l *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, err
		}
	}

	if count > int64(l.limit) {
		ttl, err := l.client.PTTL(ctx, k).Result()
		if err != nil {
			return Decision{}, err
		}
		if ttl <= 0 {
			// The first-hit EXPIRE never landed; without a TTL the key
			// would block this caller forever.
			if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
				return Decision{}, err
			}
			ttl = l.window
		}
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - int(count)}, nil
}

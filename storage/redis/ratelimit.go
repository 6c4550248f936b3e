// Package redisstore keeps rate limiter state in Redis so every instance of
// the service shares the same window.
package redisstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/interactive-solutions/go-showcase"
)

const defaultPrefix = "showcase:ratelimit:"

// checkScript prunes, counts and records in one round trip. Scores are unix
// milliseconds, members are unique per attempt.
var checkScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

if redis.call('ZCARD', key) >= limit then
	return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)

return 1
`)

type Option func(l *rateLimiter)

func SetPrefix(prefix string) Option {
	return func(l *rateLimiter) {
		l.prefix = prefix
	}
}

func SetClock(now func() time.Time) Option {
	return func(l *rateLimiter) {
		l.now = now
	}
}

type rateLimiter struct {
	client redis.UniversalClient
	config showcase.RateLimitConfig

	prefix string
	now    func() time.Time
}

func NewRateLimiter(client redis.UniversalClient, config showcase.RateLimitConfig, options ...Option) showcase.RateLimiter {
	l := &rateLimiter{
		client: client,
		config: config,
		prefix: defaultPrefix,
		now:    time.Now,
	}

	for _, option := range options {
		option(l)
	}

	return l
}

func (l *rateLimiter) Check(ctx context.Context, key string) (bool, error) {
	args := []interface{}{
		l.now().UnixMilli(),
		l.config.Window.Milliseconds(),
		l.config.MaxAttempts,
		uuid.NewString(),
	}

	allowed, err := checkScript.Run(ctx, l.client, []string{l.prefix + key}, args...).Int()
	if err != nil {
		return false, errors.Wrapf(err, "Failed to check rate limit for %s", key)
	}

	return allowed == 1, nil
}

func (l *rateLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return errors.Wrapf(err, "Failed to reset rate limit for %s", key)
	}

	return nil
}

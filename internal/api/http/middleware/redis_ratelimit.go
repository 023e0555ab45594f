package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/voc-auth/internal/logger"
)

const redisKeyPrefix = "voc-auth:ratelimit:"

// counterStore is the subset of redis commands the limiter needs.
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

type redisRateLimiter struct {
	store   counterStore
	closer  func() error
	logger  *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewRedisRateLimiter shares counters between instances through redis.
// Requests are allowed when redis is unreachable.
func NewRedisRateLimiter(ctx context.Context, addr, password string, db int, logger *logger.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	rl := newRedisRateLimiter(client, logger)
	rl.closer = client.Close
	return rl, nil
}

func newRedisRateLimiter(store counterStore, logger *logger.Logger) *redisRateLimiter {
	return &redisRateLimiter{
		store:   store,
		logger:  logger,
		timeout: 250 * time.Millisecond,
		now:     time.Now,
	}
}

func (rl *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := redisKeyPrefix + key
	counter, err := rl.store.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logError("incr", err)
		return Decision{Allowed: true}
	}

	// A negative TTL means the key has no expiry yet, either fresh or left behind by a failed EXPIRE.
	ttl, err := rl.store.TTL(ctx, redisKey).Result()
	switch {
	case err != nil:
		rl.logError("ttl", err)
		ttl = window
	case ttl < 0:
		if err := rl.store.Expire(ctx, redisKey, window).Err(); err != nil {
			rl.logError("expire", err)
			return Decision{Allowed: true}
		}
		ttl = window
	case ttl == 0:
		ttl = window
	}

	return Decision{
		Allowed:   int(counter) <= limit,
		Count:     int(counter),
		WindowEnd: rl.now().Add(ttl),
	}
}

func (rl *redisRateLimiter) Close() {
	if rl.closer != nil {
		_ = rl.closer()
	}
}

func (rl *redisRateLimiter) logError(op string, err error) {
	rl.logger.Error("HTTP middleware: redis rate limiter error",
		"op", op,
		"error", err.Error())
}

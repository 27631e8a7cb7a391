package http

import (
	"context"
	"fmt"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

const redisKeyPrefix = "snapfeed:ratelimit:"

// RedisLimiter is a fixed-window counter shared between instances. Redis
// failures let the request through.
type RedisLimiter struct {
	client  redis.Cmdable
	log     *logger.Logger
	name    string
	limit   int64
	window  time.Duration
	timeout time.Duration
}

func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisLimiterFactory converts a token bucket rule into a per-window budget
// of burst plus the sustained rate over the window.
func RedisLimiterFactory(client redis.Cmdable, log *logger.Logger) LimiterFactory {
	return func(rule LimitRule) Limiter {
		window := constants.RedisRateLimitWindow
		limit := int64(rule.Burst) + int64(math.Ceil(rule.RequestsPerSecond*window.Seconds()))
		return &RedisLimiter{
			client:  client,
			log:     log,
			name:    rule.Name,
			limit:   limit,
			window:  window,
			timeout: constants.RedisRateLimitTimeout,
		}
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if rl.limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := redisKeyPrefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logRedisError(ctx, "incr", err)
		return true
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.logRedisError(ctx, "expire", err)
		}
	}
	return counter <= rl.limit
}

func (rl *RedisLimiter) logRedisError(ctx context.Context, op string, err error) {
	metrics.RateLimitBackendErrors.WithLabelValues("redis").Inc()
	if rl.log == nil {
		return
	}
	rl.log.WithFields(ctx, logger.Fields{
		"action":  "rate_limit",
		"op":      op,
		"limiter": rl.name,
	}).Warnf("redis rate limiter error: %v", err)
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	FailClosed
)

var errNoLimiterStore = errors.New("rate limit store not configured")

// Quota is a fixed-window request budget for one named resource.
type Quota struct {
	Resource string
	Limit    int
	Window   time.Duration
}

// Decision is the outcome of charging one request against a Quota.
type Decision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

func limitsDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "test", "stress":
		return true
	}
	return false
}

// Charge counts one request by subject against q. Outside production-like
// environments every request is allowed without touching Redis.
func Charge(ctx context.Context, rdb *redis.Client, q Quota, subject string) (Decision, error) {
	if limitsDisabled() {
		return Decision{Allowed: true}, nil
	}
	if rdb == nil {
		return Decision{}, errNoLimiterStore
	}

	key := fmt.Sprintf("rl:%s:%s", q.Resource, subject)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		// First hit in this window, or a key that lost its expiry.
		if err := rdb.Expire(ctx, key, q.Window).Err(); err != nil {
			return Decision{}, err
		}
		remaining = q.Window
	}

	count := incr.Val()
	return Decision{
		Allowed:    count <= int64(q.Limit),
		Count:      count,
		RetryAfter: remaining,
	}, nil
}

func rateSubject(c *fiber.Ctx) string {
	if uid, ok := UserID(c); ok {
		return "user:" + strconv.FormatUint(uint64(uid), 10)
	}
	return "ip:" + c.IP()
}

// RateLimit enforces limit requests per window, keyed by the authenticated
// user or the remote IP. Redis failures let the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, resource string) fiber.Handler {
	return RateLimitWithPolicy(rdb, Quota{Resource: resource, Limit: limit, Window: window}, FailOpen)
}

// RateLimitWithPolicy is RateLimit with an explicit Redis failure policy.
// An empty Quota.Resource falls back to the request path.
func RateLimitWithPolicy(rdb *redis.Client, q Quota, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		quota := q
		if quota.Resource == "" {
			quota.Resource = c.Path()
		}

		decision, err := Charge(ctx, rdb, quota, rateSubject(c))
		if err != nil {
			Logger.WarnContext(ctx, "rate limit store unavailable",
				slog.String("resource", quota.Resource),
				slog.Bool("fail_closed", policy == FailClosed),
				slog.String("error", err.Error()),
			)
			if policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
					"code":  "RATE_LIMIT_UNAVAILABLE",
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(quota.Limit))
		if !decision.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(decision.RetryAfter.Round(time.Second).Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
				"code":  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}

// Package cache holds the shared Redis client and the cache-aside helpers
// used for suspension status lookups.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warden/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter counts failed commands by name. redis.Nil is a miss, not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

func countFailure(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(name).Inc()
	}
}

// NewClient accepts either host:port or a redis:// URL.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	rdb := redis.NewClient(opts)
	rdb.AddHook(errorCounter{})
	return rdb, nil
}

// InitRedis connects the package client. Any failure leaves it nil, which
// turns caching, pub/sub and the report rate limit off.
func InitRedis(addr string) {
	client = nil
	rdb, err := NewClient(addr)
	if err != nil {
		observability.GlobalLogger.Warn("redis disabled: bad REDIS_URL", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		observability.GlobalLogger.Warn("redis disabled: unreachable",
			slog.String("addr", rdb.Options().Addr), slog.String("error", err.Error()))
		_ = rdb.Close()
		return
	}

	client = rdb
	observability.GlobalLogger.Info("redis connected", slog.String("addr", rdb.Options().Addr))
}

func GetClient() *redis.Client {
	return client
}

// SetClient replaces the package client. Tests point it at miniredis.
func SetClient(rdb *redis.Client) {
	if rdb != nil {
		rdb.AddHook(errorCounter{})
	}
	client = rdb
}

// Package bootstrap initializes the runtime dependencies shared by the
// server and the command-line tools.
package bootstrap

import (
	"fmt"

	"warden/internal/cache"
	"warden/internal/config"
	"warden/internal/database"
	"warden/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to DB and Redis. The schema is applied by
// database.Connect according to DB_SCHEMA_MODE.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	if err := observability.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional: a nil client disables caching, pub/sub and the
	// report rate limit.
	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/middleware"
	redispkg "postboard/pkg/redis"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs ApplySchema after connecting.
	ApplySchema bool
	// SkipRedis leaves the Redis client nil.
	SkipRedis bool
}

// InitRuntime connects to the database and Redis. Redis is optional: when
// REDIS_URL is empty or the server is unreachable the returned client is nil
// and the API runs without rate limiting or post events.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			closeDB(db)
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SkipRedis || cfg.RedisURL == "" {
		return db, nil, nil
	}

	rdb, err := redispkg.Connect(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without it", "error", err)
		return db, nil, nil
	}
	middleware.Logger.Info("redis connected", "addr", rdb.Options().Addr)
	return db, rdb, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

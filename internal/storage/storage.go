// Package storage opens the configured connection history backend.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/config"
	"github.com/cory-johannsen/haxroom/internal/history"
	"github.com/cory-johannsen/haxroom/internal/storage/postgres"
	"github.com/cory-johannsen/haxroom/internal/storage/redis"
)

// OpenHistory returns the history.Store selected by cfg.History.Backend and a
// function that releases it.
//
// Precondition: cfg must have passed Validate.
func OpenHistory(ctx context.Context, cfg config.Config, logger *zap.Logger) (history.Store, func(), error) {
	switch cfg.History.Backend {
	case config.BackendMemory, "":
		logger.Info("history backend: memory")
		return history.NewMemoryStore(), func() {}, nil
	case config.BackendPostgres:
		repo, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("history backend: postgres", zap.String("host", cfg.Database.Host))
		return repo, repo.Close, nil
	case config.BackendRedis:
		store, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("history backend: redis")
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing redis", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// Package postgres stores connection history in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/haxroom/internal/config"
)

// pingTimeout bounds Ping when the caller's context has no deadline.
const pingTimeout = 2 * time.Second

// Open connects to the database in cfg and returns a HistoryRepository that
// owns the connection pool.
//
// Precondition: cfg must contain valid database connection parameters and the
// connections migration must have been applied.
// Postcondition: Returns a repository whose database answered a ping, or a
// non-nil error. The caller must Close the repository.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*HistoryRepository, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	repo := NewHistoryRepository(pool)
	if err := repo.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// Ping reports whether the database answers.
//
// Postcondition: Returns nil if the database responds within ctx's deadline,
// or within a short default when ctx has none.
func (r *HistoryRepository) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// Close releases the connection pool. Closing twice is safe.
//
// Postcondition: The repository is no longer usable.
func (r *HistoryRepository) Close() {
	r.db.Close()
}

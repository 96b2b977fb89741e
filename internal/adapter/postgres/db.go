package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/agent-zones/internal/adapter/postgres/migrations"
	portlocker "github.com/alanyang/agent-zones/internal/port/locker"
)

// migrationLockKey is the advisory lock held while the schema is applied.
const migrationLockKey int64 = 0x617a6d6967 // "azmig"

func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// Migrate applies every embedded migration under an advisory lock so that replicas
// starting together do not race. Migrations must be idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, lk portlocker.AdvisoryLocker) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(names)

	return lk.WithLock(ctx, migrationLockKey, func(ctx context.Context) error {
		for _, name := range names {
			data, err := fs.ReadFile(migrations.FS, name)
			if err != nil {
				return fmt.Errorf("reading migration %s: %w", name, err)
			}
			if _, err := pool.Exec(ctx, string(data)); err != nil {
				return fmt.Errorf("applying migration %s: %w", name, err)
			}
			slog.DebugContext(ctx, "migration applied", "name", name)
		}
		return nil
	})
}

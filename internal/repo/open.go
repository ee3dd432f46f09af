package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/BuzzLyutic/task-list/internal/config"
)

// Open создает BlobStore по конфигурации и готовит схему, если она нужна
func Open(ctx context.Context, cfg config.Storage) (BlobStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil

	case config.DriverFile:
		return NewFileStore(cfg.Dir)

	case config.DriverSQLite:
		dsn, err := SQLiteFileDSN(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite dsn: %w", err)
		}
		store, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return store, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return store, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStore(client, cfg.RedisPrefix), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

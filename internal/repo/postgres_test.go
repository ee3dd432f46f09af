package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB берет TEST_DATABASE_URL, иначе поднимает контейнер через testcontainers
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		pgContainer, err := postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			t.Skipf("postgres container unavailable: %v", err)
		}
		t.Cleanup(func() {
			if err := pgContainer.Terminate(ctx); err != nil {
				t.Errorf("Failed to terminate container: %v", err)
			}
		})

		dbURL, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("Failed to get connection string: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres not reachable: %v", err)
	}
	t.Cleanup(pool.Close)

	// Очистка
	pool.Exec(ctx, "DROP TABLE IF EXISTS blobs")

	return pool
}

func TestPostgresStore(t *testing.T) {
	pool := setupTestDB(t)

	store := NewPostgresStore(pool)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	// повторная миграция не должна падать
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}

	testBlobStore(t, store)
}

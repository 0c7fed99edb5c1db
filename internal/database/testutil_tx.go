package database

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	sharedPool     *pgxpool.Pool
	sharedPoolOnce sync.Once
	sharedPoolErr  error
)

// TestPool returns a pool shared by every integration test in the binary.
// The schema is migrated and categories seeded on first use.
func TestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	sharedPoolOnce.Do(func() {
		sharedPool, sharedPoolErr = openTestPool(context.Background(), dbURL)
	})
	if sharedPoolErr != nil {
		t.Fatalf("failed to setup test database: %v", sharedPoolErr)
	}
	return sharedPool
}

func openTestPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	pool, err := Connect(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	if err := SeedCategories(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// TestTx opens a transaction on the shared pool and rolls it back on cleanup.
// Repository tests use it so they can share seeded categories without
// truncating tables between runs.
func TestTx(t *testing.T) PGXDB {
	t.Helper()

	tx, err := TestPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

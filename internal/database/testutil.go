package database

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB opens a dedicated pool against TEST_DATABASE_URL, closed on cleanup.
// Tests that need to see committed state across connections use it instead
// of TestTx.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	pool, err := Connect(context.Background(), dbURL, WithMaxConns(2))
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// CleanupTables empties every budget tracker table and resets sequences.
func CleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	const stmt = `TRUNCATE TABLE alerts, budgets, expenses, users, categories RESTART IDENTITY CASCADE`
	if _, err := pool.Exec(context.Background(), stmt); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
}

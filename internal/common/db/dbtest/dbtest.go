// Package dbtest opens a migrated Postgres pool for repository tests. Tests
// are skipped unless SNAPFEED_TEST_DATABASE_URL is set.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/snapfeed/internal/common/db"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

const EnvDatabaseURL = "SNAPFEED_TEST_DATABASE_URL"

func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(EnvDatabaseURL)
	if url == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	log := logger.NewWriter(&strings.Builder{}, "test", "ERROR")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	migrator, err := db.NewMigrator(url, log)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := migrator.Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := db.NewPool(ctx, log, url, "snapfeed-test")
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

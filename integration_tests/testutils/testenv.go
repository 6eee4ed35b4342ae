//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/Black-And-White-Club/clubhouse/integration_tests/containers"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// TestEnvironment holds the migrated database shared by a test binary.
type TestEnvironment struct {
	PgContainer   *postgres.PostgresContainer
	ConnStr       string
	DB            *bun.DB
	Observability observability.Observability
}

var (
	sharedEnv     *TestEnvironment
	sharedEnvErr  error
	sharedEnvOnce sync.Once
)

// GetOrCreateTestEnv starts Postgres once per package and returns a clean
// database. It skips under -short.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sharedEnvOnce.Do(func() {
		sharedEnv, sharedEnvErr = newTestEnvironment(context.Background())
	})
	if sharedEnvErr != nil {
		t.Fatalf("failed to set up test environment: %v", sharedEnvErr)
	}

	if err := CleanupDatabase(context.Background(), sharedEnv.DB); err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
	return sharedEnv
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx, containers.PostgresConfig{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())

	if err := RunMigrations(ctx, db, connStr); err != nil {
		db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{
		PgContainer:   pgContainer,
		ConnStr:       connStr,
		DB:            db,
		Observability: observability.NewTestObservability(),
	}, nil
}

// Shutdown closes the database and terminates the container. Call it from TestMain.
func Shutdown(ctx context.Context) {
	if sharedEnv == nil {
		return
	}
	sharedEnv.DB.Close()
	_ = sharedEnv.PgContainer.Terminate(ctx)
}

//go:build integration

// Package containers starts the throwaway services integration tests run against.
package containers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresConfig names the database created inside the container.
type PostgresConfig struct {
	Image    string
	Database string
	User     string
	Password string
	Startup  time.Duration
}

func (c PostgresConfig) withDefaults() PostgresConfig {
	if c.Image == "" {
		c.Image = "postgres:17-alpine"
	}
	if c.Database == "" {
		c.Database = "clubhouse_test"
	}
	if c.User == "" {
		c.User = "testuser"
	}
	if c.Password == "" {
		c.Password = "testpass"
	}
	if c.Startup == 0 {
		c.Startup = 45 * time.Second
	}
	return c
}

// SetupPostgresContainer starts Postgres and returns the container with an
// sslmode=disable connection string.
func SetupPostgresContainer(ctx context.Context, cfg PostgresConfig) (*postgres.PostgresContainer, string, error) {
	cfg = cfg.withDefaults()

	pgContainer, err := postgres.Run(ctx,
		cfg.Image,
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.User),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
					cfg.User, cfg.Password, host, port.Port(), cfg.Database)
			}).WithStartupTimeout(cfg.Startup),
		),
	)
	if err != nil {
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get postgres connection string: %w", err)
	}

	parsed, err := url.Parse(connStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	q := parsed.Query()
	q.Set("sslmode", "disable")
	parsed.RawQuery = q.Encode()

	log.Printf("Postgres container %s ready", cfg.Image)
	return pgContainer, parsed.String(), nil
}

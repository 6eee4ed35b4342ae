//go:build integration

package testutils

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	membermigrations "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories/migrations"
	rushmigrations "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories/migrations"
)

// appTables lists every table owned by the two tracks.
var appTables = []string{
	"rush_event_attendees", "rush_events", "rushees", "rush_timeframes",
	"event_tags", "tags", "member_event_attendees", "member_events", "members", "member_timeframes",
}

// RunMigrations installs the River schema and both module schemas.
func RunMigrations(ctx context.Context, db *bun.DB, pgConnStr string) error {
	if err := runRiverMigrations(ctx, pgConnStr); err != nil {
		return err
	}

	modules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"member", membermigrations.Migrations},
		{"rush", rushmigrations.Migrations},
	}
	for _, mod := range modules {
		if err := runModuleMigrations(ctx, db, mod.name, mod.migrations); err != nil {
			return err
		}
	}
	log.Println("All migrations ran successfully")
	return nil
}

func runRiverMigrations(ctx context.Context, pgConnStr string) error {
	pool, err := pgxpool.New(ctx, pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

func runModuleMigrations(ctx context.Context, db *bun.DB, name string, migrations *migrate.Migrations) error {
	migrator := migrate.NewMigrator(db, migrations,
		migrate.WithTableName(name+"_bun_migrations"),
		migrate.WithLocksTableName(name+"_bun_migration_locks"),
	)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s migration tables: %w", name, err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", name, err)
	}
	if group.IsZero() {
		log.Printf("No %s migrations to run", name)
	} else {
		log.Printf("Ran %s migrations group #%d", name, group.ID)
	}
	return nil
}

// CleanupDatabase truncates every application table and the River job table.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(appTables, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		return fmt.Errorf("failed to cleanup river jobs: %w", err)
	}
	return nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db bun.IDB, table string) (int, error) {
	return db.NewSelect().TableExpr(table).Count(ctx)
}

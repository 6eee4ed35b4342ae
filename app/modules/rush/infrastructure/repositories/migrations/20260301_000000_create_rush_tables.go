package rushmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rush tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS rush_timeframes (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL,
					spreadsheet_id TEXT,
					date_created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					is_default BOOLEAN NOT NULL DEFAULT FALSE
				);
			`); err != nil {
				return fmt.Errorf("failed to create rush_timeframes table: %w", err)
			}

			// Child rows are removed explicitly before their parents.
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS rush_events (
					id UUID PRIMARY KEY,
					timeframe_id UUID NOT NULL REFERENCES rush_timeframes(id),
					name TEXT NOT NULL,
					date_created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					sheet_tab TEXT NOT NULL,
					spreadsheet_col TEXT NOT NULL,
					code TEXT NOT NULL,
					deadline TIMESTAMPTZ NOT NULL,
					cover_image_url TEXT,
					cover_image_version TEXT NOT NULL DEFAULT 'v0',
					num_attendees INTEGER NOT NULL DEFAULT 0
				);
				CREATE INDEX IF NOT EXISTS idx_rush_events_timeframe_id ON rush_events(timeframe_id);
			`); err != nil {
				return fmt.Errorf("failed to create rush_events table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS rushees (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT NOT NULL,
					major TEXT,
					year TEXT
				);
			`); err != nil {
				return fmt.Errorf("failed to create rushees table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS rush_event_attendees (
					event_id UUID NOT NULL REFERENCES rush_events(id),
					rushee_id TEXT NOT NULL REFERENCES rushees(id),
					checkin_time TIMESTAMPTZ NOT NULL,
					PRIMARY KEY (event_id, rushee_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create rush_event_attendees table: %w", err)
			}

			// At most one default timeframe.
			if _, err := tx.ExecContext(ctx, `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_rush_timeframes_single_default
				ON rush_timeframes(is_default) WHERE is_default;
			`); err != nil {
				return fmt.Errorf("failed to create default timeframe index: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rush tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS rush_event_attendees;
				DROP TABLE IF EXISTS rushees;
				DROP TABLE IF EXISTS rush_events;
				DROP TABLE IF EXISTS rush_timeframes;
			`); err != nil {
				return fmt.Errorf("failed to drop rush tables: %w", err)
			}
			return nil
		})
	})
}

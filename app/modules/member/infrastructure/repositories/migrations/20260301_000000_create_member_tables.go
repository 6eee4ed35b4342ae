package membermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating member tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS member_timeframes (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL,
					spreadsheet_id TEXT,
					date_created TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create member_timeframes table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS member_events (
					id UUID PRIMARY KEY,
					timeframe_id UUID NOT NULL REFERENCES member_timeframes(id) ON DELETE CASCADE,
					name TEXT NOT NULL,
					date_created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					sheet_tab TEXT NOT NULL,
					spreadsheet_col TEXT NOT NULL,
					code TEXT NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_member_events_timeframe_id ON member_events(timeframe_id);
			`); err != nil {
				return fmt.Errorf("failed to create member_events table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS members (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT NOT NULL
				);
			`); err != nil {
				return fmt.Errorf("failed to create members table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS member_event_attendees (
					event_id UUID NOT NULL REFERENCES member_events(id) ON DELETE CASCADE,
					member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
					checkin_time TIMESTAMPTZ NOT NULL,
					PRIMARY KEY (event_id, member_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create member_event_attendees table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS tags (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL UNIQUE
				);
				CREATE TABLE IF NOT EXISTS event_tags (
					event_id UUID NOT NULL REFERENCES member_events(id) ON DELETE CASCADE,
					tag_id UUID NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
					PRIMARY KEY (event_id, tag_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create tag tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping member tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS event_tags;
				DROP TABLE IF EXISTS tags;
				DROP TABLE IF EXISTS member_event_attendees;
				DROP TABLE IF EXISTS members;
				DROP TABLE IF EXISTS member_events;
				DROP TABLE IF EXISTS member_timeframes;
			`); err != nil {
				return fmt.Errorf("failed to drop member tables: %w", err)
			}
			return nil
		})
	})
}

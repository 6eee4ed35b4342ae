package rushmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding rush_events column index...")

		// One event per column of a tab.
		if _, err := db.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_rush_events_tab_column
			ON rush_events(timeframe_id, sheet_tab, spreadsheet_col);
		`); err != nil {
			return fmt.Errorf("failed to create rush_events column index: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rush_events column index...")

		if _, err := db.ExecContext(ctx, `DROP INDEX IF EXISTS idx_rush_events_tab_column;`); err != nil {
			return fmt.Errorf("failed to drop rush_events column index: %w", err)
		}
		return nil
	})
}

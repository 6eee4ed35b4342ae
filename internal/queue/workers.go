package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/clubhouse/internal/objectstore"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
	"github.com/riverqueue/river"
)

// SheetMirrorWorker replays a check-in marker write.
type SheetMirrorWorker struct {
	river.WorkerDefaults[SheetMirrorJob]
	sheets sheets.Spreadsheet
	logger *slog.Logger
}

// NewSheetMirrorWorker creates a SheetMirrorWorker.
func NewSheetMirrorWorker(sp sheets.Spreadsheet, logger *slog.Logger) *SheetMirrorWorker {
	return &SheetMirrorWorker{sheets: sp, logger: logger}
}

func (w *SheetMirrorWorker) Work(ctx context.Context, job *river.Job[SheetMirrorJob]) error {
	row, found, err := sheets.MarkAttendance(ctx, w.sheets, job.Args.Mark)
	if err != nil {
		w.logger.WarnContext(ctx, "Sheet mirror retry failed",
			attr.Int64("job_id", job.ID),
			attr.Int("attempt", job.Attempt),
			attr.String("event_id", job.Args.EventID),
			attr.Error(err),
		)
		return fmt.Errorf("sheet mirror: %w", err)
	}
	if !found {
		w.logger.InfoContext(ctx, "Person not present in sheet, nothing to mirror",
			attr.String("event_id", job.Args.EventID),
			attr.String("person_id", job.Args.PersonID),
		)
		return nil
	}
	w.logger.InfoContext(ctx, "Sheet mirror retry succeeded",
		attr.String("event_id", job.Args.EventID),
		attr.String("person_id", job.Args.PersonID),
		attr.Int("row", row),
	)
	return nil
}

// CoverCleanupWorker deletes a superseded cover image.
type CoverCleanupWorker struct {
	river.WorkerDefaults[CoverCleanupJob]
	store  objectstore.Store
	logger *slog.Logger
}

// NewCoverCleanupWorker creates a CoverCleanupWorker.
func NewCoverCleanupWorker(store objectstore.Store, logger *slog.Logger) *CoverCleanupWorker {
	return &CoverCleanupWorker{store: store, logger: logger}
}

func (w *CoverCleanupWorker) Work(ctx context.Context, job *river.Job[CoverCleanupJob]) error {
	if err := w.store.Delete(ctx, job.Args.Path); err != nil {
		return fmt.Errorf("cover cleanup: %w", err)
	}
	w.logger.InfoContext(ctx, "Deleted superseded cover image", attr.String("path", job.Args.Path))
	return nil
}

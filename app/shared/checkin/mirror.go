package checkin

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
)

// Result is returned to the caller of a successful check-in.
type Result struct {
	EventID     string    `json:"event_id"`
	PersonID    string    `json:"person_id"`
	CheckinTime time.Time `json:"checkin_time"`
	// SheetMatched is false when the person has no row in the roster tab.
	SheetMatched bool `json:"sheet_matched"`
	SheetRow     int  `json:"sheet_row,omitempty"`
	// SheetSyncPending is true when the marker write failed and was queued.
	SheetSyncPending bool `json:"sheet_sync_pending,omitempty"`
}

// Mirror copies check-ins into the roster spreadsheet. The spreadsheet is
// advisory: nothing it does fails a check-in.
type Mirror struct {
	Sheets         sheets.Spreadsheet
	Retries        queue.Enqueuer
	IdentityColumn string
	Marker         string
	Logger         *slog.Logger
}

// Target locates the roster cell for one check-in.
type Target struct {
	SpreadsheetID string
	Tab           string
	Column        string
	Identity      string
}

// Apply writes the marker for res.PersonID and records the outcome on res.
func (m Mirror) Apply(ctx context.Context, t Target, res *Result) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if m.Sheets == nil || t.SpreadsheetID == "" {
		logger.InfoContext(ctx, "Event has no linked spreadsheet, skipping roster mirror",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", res.EventID),
		)
		return
	}

	mark := sheets.Mark{
		SpreadsheetID:  t.SpreadsheetID,
		Tab:            t.Tab,
		IdentityColumn: m.IdentityColumn,
		Identity:       t.Identity,
		Column:         t.Column,
		Marker:         m.Marker,
	}

	row, found, err := sheets.MarkAttendance(ctx, m.Sheets, mark)
	if err == nil {
		res.SheetMatched = found
		res.SheetRow = row
		if !found {
			logger.InfoContext(ctx, "Person not found in roster tab",
				attr.ExtractCorrelationID(ctx),
				attr.String("event_id", res.EventID),
				attr.String("person_id", res.PersonID),
				attr.String("tab", t.Tab),
			)
		}
		return
	}

	logger.WarnContext(ctx, "Failed to mirror check-in to spreadsheet",
		attr.ExtractCorrelationID(ctx),
		attr.String("event_id", res.EventID),
		attr.String("person_id", res.PersonID),
		attr.Error(err),
	)
	if m.Retries == nil {
		return
	}
	job := queue.SheetMirrorJob{EventID: res.EventID, PersonID: res.PersonID, Mark: mark}
	if err := m.Retries.ScheduleSheetMirror(ctx, job); err != nil {
		logger.ErrorContext(ctx, "Failed to schedule spreadsheet mirror retry",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", res.EventID),
			attr.Error(err),
		)
		return
	}
	res.SheetSyncPending = true
}

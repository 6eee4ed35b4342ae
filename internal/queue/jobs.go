package queue

import "github.com/Black-And-White-Club/clubhouse/internal/sheets"

// SheetMirrorJob retries writing a check-in marker after the inline attempt failed.
type SheetMirrorJob struct {
	EventID  string      `json:"event_id"`
	PersonID string      `json:"person_id"`
	Mark     sheets.Mark `json:"mark"`
}

// Kind returns the job type identifier for River
func (SheetMirrorJob) Kind() string { return "sheet_mirror" }

// CoverCleanupJob retries deleting a superseded cover image object.
type CoverCleanupJob struct {
	Path string `json:"path"`
}

// Kind returns the job type identifier for River
func (CoverCleanupJob) Kind() string { return "cover_cleanup" }

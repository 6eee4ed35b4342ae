package rushservice

import (
	"time"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
)

// Timeframe is a rush season.
type Timeframe struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SpreadsheetID string    `json:"spreadsheet_id,omitempty"`
	DateCreated   time.Time `json:"date_created"`
	IsDefault     bool      `json:"is_default"`
	Events        []Event   `json:"events,omitempty"`
}

// Event is a rush event. The check-in code itself is never returned.
type Event struct {
	ID                string    `json:"id"`
	TimeframeID       string    `json:"timeframe_id"`
	Name              string    `json:"name"`
	DateCreated       time.Time `json:"date_created"`
	LastModified      time.Time `json:"last_modified"`
	SheetTab          string    `json:"sheet_tab"`
	SpreadsheetCol    string    `json:"spreadsheet_col"`
	HasCode           bool      `json:"has_code"`
	Deadline          time.Time `json:"deadline"`
	CoverImageURL     string    `json:"cover_image_url,omitempty"`
	CoverImageVersion string    `json:"cover_image_version"`
	NumAttendees      int       `json:"num_attendees"`
}

// CreateTimeframeRequest creates a timeframe. Nested events are not accepted.
type CreateTimeframeRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	SpreadsheetID string `json:"spreadsheet_id" validate:"omitempty,max=200"`
}

// CreateEventRequest creates an event. Deadline is RFC3339 or a phrase such as
// "next friday at 9pm". CoverImage is a data URI or base64 payload.
type CreateEventRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	SheetTab   string `json:"sheet_tab" validate:"required,max=100"`
	Code       string `json:"code" validate:"max=100"`
	Deadline   string `json:"deadline" validate:"required"`
	CoverImage string `json:"cover_image"`
}

// UpdateEventRequest patches an event. Nil fields are left alone.
type UpdateEventRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code       *string `json:"code" validate:"omitempty,max=100"`
	Deadline   *string `json:"deadline" validate:"omitempty,min=1"`
	CoverImage *string `json:"cover_image" validate:"omitempty,min=1"`
}

// CheckInRequest is a rushee checking in to an event.
type CheckInRequest struct {
	EventID  string `json:"-"`
	RusheeID string `json:"rushee_id" validate:"required,max=200"`
	Code     string `json:"code"`
}

// SetDefaultTimeframeRequest selects the default timeframe; empty clears it.
type SetDefaultTimeframeRequest struct {
	TimeframeID string `json:"timeframe_id"`
}

func toTimeframe(tf *rushdb.Timeframe) Timeframe {
	return Timeframe{
		ID:            tf.ID.String(),
		Name:          tf.Name,
		SpreadsheetID: tf.SpreadsheetID,
		DateCreated:   tf.DateCreated,
		IsDefault:     tf.IsDefault,
	}
}

func toEvent(e *rushdb.Event) Event {
	return Event{
		ID:                e.ID.String(),
		TimeframeID:       e.TimeframeID.String(),
		Name:              e.Name,
		DateCreated:       e.DateCreated,
		LastModified:      e.LastModified,
		SheetTab:          e.SheetTab,
		SpreadsheetCol:    e.SpreadsheetCol,
		HasCode:           e.Code != "",
		Deadline:          e.Deadline,
		CoverImageURL:     e.CoverImageURL,
		CoverImageVersion: e.CoverImageVersion,
		NumAttendees:      e.NumAttendees,
	}
}

package memberservice

import (
	"time"

	memberdb "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories"
)

// Timeframe is a period grouping member events.
type Timeframe struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SpreadsheetID string    `json:"spreadsheet_id,omitempty"`
	DateCreated   time.Time `json:"date_created"`
	Events        []Event   `json:"events,omitempty"`
}

// Event is a member event.
type Event struct {
	ID             string    `json:"id"`
	TimeframeID    string    `json:"timeframe_id"`
	Name           string    `json:"name"`
	DateCreated    time.Time `json:"date_created"`
	LastModified   time.Time `json:"last_modified"`
	SheetTab       string    `json:"sheet_tab"`
	SpreadsheetCol string    `json:"spreadsheet_col"`
	HasCode        bool      `json:"has_code"`
	Tags           []string  `json:"tags"`
}

// Attendee is a member recorded at an event.
type Attendee struct {
	MemberID    string    `json:"member_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CheckinTime time.Time `json:"checkin_time"`
}

// Tag labels events.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateTimeframeRequest creates a timeframe. Nested events are not accepted.
type CreateTimeframeRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	SpreadsheetID string `json:"spreadsheet_id" validate:"omitempty,max=200"`
}

// CreateEventRequest creates an event in a timeframe.
type CreateEventRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	SheetTab string   `json:"sheet_tab" validate:"required,max=100"`
	Code     string   `json:"code" validate:"max=100"`
	Tags     []string `json:"tags" validate:"max=20,dive,max=50"`
}

// UpdateEventRequest patches an event. Nil fields are left alone; a non-nil
// Tags replaces the event's tags.
type UpdateEventRequest struct {
	Name *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Code *string   `json:"code" validate:"omitempty,max=100"`
	Tags *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// CheckInRequest is a member checking in to an event.
type CheckInRequest struct {
	EventID  string `json:"-"`
	MemberID string `json:"member_id" validate:"required,max=200"`
	Code     string `json:"code"`
}

func toTimeframe(tf *memberdb.Timeframe) Timeframe {
	return Timeframe{
		ID:            tf.ID.String(),
		Name:          tf.Name,
		SpreadsheetID: tf.SpreadsheetID,
		DateCreated:   tf.DateCreated,
	}
}

func toEvent(e *memberdb.Event, tags []string) Event {
	if tags == nil {
		tags = []string{}
	}
	return Event{
		ID:             e.ID.String(),
		TimeframeID:    e.TimeframeID.String(),
		Name:           e.Name,
		DateCreated:    e.DateCreated,
		LastModified:   e.LastModified,
		SheetTab:       e.SheetTab,
		SpreadsheetCol: e.SpreadsheetCol,
		HasCode:        e.Code != "",
		Tags:           tags,
	}
}

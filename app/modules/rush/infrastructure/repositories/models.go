package rushdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Timeframe groups the events of one rush season.
type Timeframe struct {
	bun.BaseModel `bun:"table:rush_timeframes,alias:tf"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	Name          string    `bun:"name,notnull"`
	SpreadsheetID string    `bun:"spreadsheet_id,nullzero"`
	DateCreated   time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp"`
	IsDefault     bool      `bun:"is_default,notnull,default:false"`
}

// Event is a single rush event. SheetTab and SpreadsheetCol are fixed at
// creation.
type Event struct {
	bun.BaseModel `bun:"table:rush_events,alias:e"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	TimeframeID       uuid.UUID `bun:"timeframe_id,notnull,type:uuid"`
	Name              string    `bun:"name,notnull"`
	DateCreated       time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp"`
	LastModified      time.Time `bun:"last_modified,nullzero,notnull,default:current_timestamp"`
	SheetTab          string    `bun:"sheet_tab,notnull"`
	SpreadsheetCol    string    `bun:"spreadsheet_col,notnull"`
	Code              string    `bun:"code,notnull"`
	Deadline          time.Time `bun:"deadline,notnull"`
	CoverImageURL     string    `bun:"cover_image_url,nullzero"`
	CoverImageVersion string    `bun:"cover_image_version,notnull,default:'v0'"`
	NumAttendees      int       `bun:"num_attendees,notnull,default:0"`
}

// Rushee is a prospective member.
type Rushee struct {
	bun.BaseModel `bun:"table:rushees,alias:r"`

	ID    string `bun:"id,pk"`
	Name  string `bun:"name,notnull"`
	Email string `bun:"email,notnull"`
	Major string `bun:"major,nullzero"`
	Year  string `bun:"year,nullzero"`
}

// EventAttendee records one rushee checking in to one event.
type EventAttendee struct {
	bun.BaseModel `bun:"table:rush_event_attendees,alias:a"`

	EventID     uuid.UUID `bun:"event_id,pk,type:uuid"`
	RusheeID    string    `bun:"rushee_id,pk"`
	CheckinTime time.Time `bun:"checkin_time,notnull"`

	Rushee *Rushee `bun:"rel:belongs-to,join:rushee_id=id"`
}

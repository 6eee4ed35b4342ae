package memberdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Timeframe groups member events, usually one semester.
type Timeframe struct {
	bun.BaseModel `bun:"table:member_timeframes,alias:tf"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	Name          string    `bun:"name,notnull"`
	SpreadsheetID string    `bun:"spreadsheet_id,nullzero"`
	DateCreated   time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp"`
}

// Event is a member event. SheetTab and SpreadsheetCol are fixed at creation.
type Event struct {
	bun.BaseModel `bun:"table:member_events,alias:e"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	TimeframeID    uuid.UUID `bun:"timeframe_id,notnull,type:uuid"`
	Name           string    `bun:"name,notnull"`
	DateCreated    time.Time `bun:"date_created,nullzero,notnull,default:current_timestamp"`
	LastModified   time.Time `bun:"last_modified,nullzero,notnull,default:current_timestamp"`
	SheetTab       string    `bun:"sheet_tab,notnull"`
	SpreadsheetCol string    `bun:"spreadsheet_col,notnull"`
	Code           string    `bun:"code,notnull"`
}

// Member is a club member.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID    string `bun:"id,pk"`
	Name  string `bun:"name,notnull"`
	Email string `bun:"email,notnull"`
}

// EventAttendee records one member checking in to one event.
type EventAttendee struct {
	bun.BaseModel `bun:"table:member_event_attendees,alias:a"`

	EventID     uuid.UUID `bun:"event_id,pk,type:uuid"`
	MemberID    string    `bun:"member_id,pk"`
	CheckinTime time.Time `bun:"checkin_time,notnull"`

	Member *Member `bun:"rel:belongs-to,join:member_id=id"`
}

// Tag is an event label, unique by name.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull,unique"`
}

// EventTag associates an event with a tag.
type EventTag struct {
	bun.BaseModel `bun:"table:event_tags,alias:et"`

	EventID uuid.UUID `bun:"event_id,pk,type:uuid"`
	TagID   uuid.UUID `bun:"tag_id,pk,type:uuid"`
}

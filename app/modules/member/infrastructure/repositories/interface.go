package memberdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for member event persistence.
type Repository interface {
	CreateTimeframe(ctx context.Context, db bun.IDB, tf *Timeframe) error
	GetTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) (*Timeframe, error)
	ListTimeframes(ctx context.Context, db bun.IDB) ([]Timeframe, error)
	// DeleteTimeframe removes the timeframe. Its events and their attendees
	// and tag links cascade.
	DeleteTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error

	CreateEvent(ctx context.Context, db bun.IDB, event *Event) error
	GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]Event, error)
	UpdateEvent(ctx context.Context, db bun.IDB, event *Event, columns ...string) error
	DeleteEvent(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// GetOrCreateTags returns a tag row for every name, inserting the missing ones.
	GetOrCreateTags(ctx context.Context, db bun.IDB, names []string) ([]Tag, error)
	ListTags(ctx context.Context, db bun.IDB) ([]Tag, error)
	// ReplaceEventTags sets the event's tag links to exactly tagIDs.
	ReplaceEventTags(ctx context.Context, db bun.IDB, eventID uuid.UUID, tagIDs []uuid.UUID) error
	// ListEventTags returns tag names keyed by event id.
	ListEventTags(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) (map[uuid.UUID][]string, error)

	GetMember(ctx context.Context, db bun.IDB, id string) (*Member, error)

	AttendeeExists(ctx context.Context, db bun.IDB, eventID uuid.UUID, memberID string) (bool, error)
	// InsertAttendee returns ErrDuplicate when the member is already recorded.
	InsertAttendee(ctx context.Context, db bun.IDB, attendee *EventAttendee) error
	// ListAttendees returns an event's attendees with their member loaded.
	ListAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]EventAttendee, error)
}

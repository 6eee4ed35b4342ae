package rushdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for rush persistence.
type Repository interface {
	CreateTimeframe(ctx context.Context, db bun.IDB, tf *Timeframe) error
	GetTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) (*Timeframe, error)
	ListTimeframes(ctx context.Context, db bun.IDB) ([]Timeframe, error)
	DeleteTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// ClearDefaultTimeframes unsets the default flag on every timeframe.
	ClearDefaultTimeframes(ctx context.Context, db bun.IDB) error
	// MarkDefaultTimeframe sets the default flag on one timeframe.
	MarkDefaultTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error
	// GetDefaultTimeframe returns ErrNotFound when no timeframe is the default.
	GetDefaultTimeframe(ctx context.Context, db bun.IDB) (*Timeframe, error)

	CreateEvent(ctx context.Context, db bun.IDB, event *Event) error
	GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*Event, error)
	// ListEvents returns a timeframe's events ordered by creation time.
	ListEvents(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]Event, error)
	UpdateEvent(ctx context.Context, db bun.IDB, event *Event, columns ...string) error
	DeleteEvent(ctx context.Context, db bun.IDB, id uuid.UUID) error

	GetRushee(ctx context.Context, db bun.IDB, id string) (*Rushee, error)

	// InsertAttendee returns ErrDuplicate when the rushee is already recorded.
	InsertAttendee(ctx context.Context, db bun.IDB, attendee *EventAttendee) error
	IncrementAttendeeCount(ctx context.Context, db bun.IDB, eventID uuid.UUID) error
	// ListAttendees returns the attendee records of every event in a timeframe,
	// each with its rushee loaded.
	ListAttendees(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]EventAttendee, error)
	DeleteAttendeesForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) error
}

package rushdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new rush repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTimeframe inserts a timeframe.
func (r *Impl) CreateTimeframe(ctx context.Context, db bun.IDB, tf *Timeframe) error {
	db = r.resolveDB(db)
	if tf.ID == uuid.Nil {
		tf.ID = uuid.New()
	}
	if tf.DateCreated.IsZero() {
		tf.DateCreated = time.Now().UTC()
	}
	if _, err := db.NewInsert().Model(tf).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create timeframe: %w", err)
	}
	return nil
}

// GetTimeframe retrieves a timeframe by ID.
func (r *Impl) GetTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) (*Timeframe, error) {
	db = r.resolveDB(db)
	tf := new(Timeframe)
	if err := db.NewSelect().Model(tf).Where("tf.id = ?", id).Scan(ctx); err != nil {
		return nil, notFoundOr(err, "failed to get timeframe")
	}
	return tf, nil
}

// ListTimeframes returns every timeframe, newest first.
func (r *Impl) ListTimeframes(ctx context.Context, db bun.IDB) ([]Timeframe, error) {
	db = r.resolveDB(db)
	var tfs []Timeframe
	if err := db.NewSelect().Model(&tfs).Order("tf.date_created DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list timeframes: %w", err)
	}
	return tfs, nil
}

// DeleteTimeframe removes a timeframe row. Its events must already be gone.
func (r *Impl) DeleteTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().Model((*Timeframe)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete timeframe: %w", err)
	}
	return requireAffected(result)
}

// ClearDefaultTimeframes unsets the default flag on every timeframe.
func (r *Impl) ClearDefaultTimeframes(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*Timeframe)(nil)).
		Set("is_default = ?", false).
		Where("is_default = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear default timeframes: %w", err)
	}
	return nil
}

// MarkDefaultTimeframe flags one timeframe as the default.
func (r *Impl) MarkDefaultTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Timeframe)(nil)).
		Set("is_default = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDefaultTaken
		}
		return fmt.Errorf("failed to mark default timeframe: %w", err)
	}
	return requireAffected(result)
}

// GetDefaultTimeframe returns the timeframe flagged as default.
func (r *Impl) GetDefaultTimeframe(ctx context.Context, db bun.IDB) (*Timeframe, error) {
	db = r.resolveDB(db)
	tf := new(Timeframe)
	err := db.NewSelect().
		Model(tf).
		Where("tf.is_default = ?", true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "failed to get default timeframe")
	}
	return tf, nil
}

// CreateEvent inserts an event.
func (r *Impl) CreateEvent(ctx context.Context, db bun.IDB, event *Event) error {
	db = r.resolveDB(db)
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := time.Now().UTC()
	if event.DateCreated.IsZero() {
		event.DateCreated = now
	}
	if event.LastModified.IsZero() {
		event.LastModified = now
	}
	if _, err := db.NewInsert().Model(event).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrColumnTaken
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (r *Impl) GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*Event, error) {
	db = r.resolveDB(db)
	event := new(Event)
	if err := db.NewSelect().Model(event).Where("e.id = ?", id).Scan(ctx); err != nil {
		return nil, notFoundOr(err, "failed to get event")
	}
	return event, nil
}

// ListEvents returns a timeframe's events ordered by creation time.
func (r *Impl) ListEvents(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]Event, error) {
	db = r.resolveDB(db)
	var events []Event
	err := db.NewSelect().
		Model(&events).
		Where("e.timeframe_id = ?", timeframeID).
		Order("e.date_created ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEvent writes the given columns of an event. last_modified is always
// refreshed.
func (r *Impl) UpdateEvent(ctx context.Context, db bun.IDB, event *Event, columns ...string) error {
	db = r.resolveDB(db)
	event.LastModified = time.Now().UTC()
	columns = append(columns, "last_modified")
	result, err := db.NewUpdate().
		Model(event).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return requireAffected(result)
}

// DeleteEvent removes an event row. Its attendees must already be gone.
func (r *Impl) DeleteEvent(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().Model((*Event)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireAffected(result)
}

// GetRushee retrieves a rushee by ID.
func (r *Impl) GetRushee(ctx context.Context, db bun.IDB, id string) (*Rushee, error) {
	db = r.resolveDB(db)
	rushee := new(Rushee)
	if err := db.NewSelect().Model(rushee).Where("r.id = ?", id).Scan(ctx); err != nil {
		return nil, notFoundOr(err, "failed to get rushee")
	}
	return rushee, nil
}

// InsertAttendee records a check-in. The (event_id, rushee_id) primary key
// rejects a second check-in.
func (r *Impl) InsertAttendee(ctx context.Context, db bun.IDB, attendee *EventAttendee) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(attendee).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert attendee: %w", err)
	}
	return nil
}

// IncrementAttendeeCount bumps the denormalized attendee counter of an event.
func (r *Impl) IncrementAttendeeCount(ctx context.Context, db bun.IDB, eventID uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Event)(nil)).
		Set("num_attendees = num_attendees + 1").
		Set("last_modified = ?", time.Now().UTC()).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment attendee count: %w", err)
	}
	return requireAffected(result)
}

// ListAttendees returns every attendee record in a timeframe with its rushee.
func (r *Impl) ListAttendees(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]EventAttendee, error) {
	db = r.resolveDB(db)
	var attendees []EventAttendee
	err := db.NewSelect().
		Model(&attendees).
		Relation("Rushee").
		Join("JOIN rush_events AS e ON e.id = a.event_id").
		Where("e.timeframe_id = ?", timeframeID).
		Order("a.checkin_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}

// DeleteAttendeesForEvent removes every attendee record of an event.
func (r *Impl) DeleteAttendeesForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*EventAttendee)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete event attendees: %w", err)
	}
	return nil
}

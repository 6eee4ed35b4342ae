package memberdb

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

// NewRepository creates a new member repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

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

// DeleteTimeframe removes a timeframe; the schema cascades to its events.
func (r *Impl) DeleteTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().Model((*Timeframe)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete timeframe: %w", err)
	}
	return requireAffected(result)
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

// UpdateEvent writes the given columns of an event and refreshes last_modified.
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

// DeleteEvent removes an event; attendees and tag links cascade.
func (r *Impl) DeleteEvent(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().Model((*Event)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireAffected(result)
}

// GetOrCreateTags inserts any missing names and selects all of them. A
// concurrent insert of the same name is absorbed by ON CONFLICT.
func (r *Impl) GetOrCreateTags(ctx context.Context, db bun.IDB, names []string) ([]Tag, error) {
	db = r.resolveDB(db)
	if len(names) == 0 {
		return nil, nil
	}

	rows := make([]Tag, 0, len(names))
	for _, name := range names {
		rows = append(rows, Tag{ID: uuid.New(), Name: name})
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tags: %w", err)
	}

	var tags []Tag
	err = db.NewSelect().
		Model(&tags).
		Where("t.name IN (?)", bun.In(names)).
		Order("t.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	return tags, nil
}

// ListTags returns every tag ordered by name.
func (r *Impl) ListTags(ctx context.Context, db bun.IDB) ([]Tag, error) {
	db = r.resolveDB(db)
	var tags []Tag
	if err := db.NewSelect().Model(&tags).Order("t.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// ReplaceEventTags drops the event's links and writes one per tag id.
func (r *Impl) ReplaceEventTags(ctx context.Context, db bun.IDB, eventID uuid.UUID, tagIDs []uuid.UUID) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*EventTag)(nil)).Where("event_id = ?", eventID).Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear event tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]EventTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, EventTag{EventID: eventID, TagID: id})
	}
	_, err := db.NewInsert().
		Model(&links).
		On("CONFLICT (event_id, tag_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to link event tags: %w", err)
	}
	return nil
}

// ListEventTags returns tag names keyed by event id, each list sorted by name.
func (r *Impl) ListEventTags(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	db = r.resolveDB(db)
	out := make(map[uuid.UUID][]string, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		EventID uuid.UUID `bun:"event_id"`
		Name    string    `bun:"name"`
	}
	err := db.NewSelect().
		TableExpr("event_tags AS et").
		ColumnExpr("et.event_id, t.name").
		Join("JOIN tags AS t ON t.id = et.tag_id").
		Where("et.event_id IN (?)", bun.In(eventIDs)).
		OrderExpr("t.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list event tags: %w", err)
	}
	for _, row := range rows {
		out[row.EventID] = append(out[row.EventID], row.Name)
	}
	return out, nil
}

// GetMember retrieves a member by ID.
func (r *Impl) GetMember(ctx context.Context, db bun.IDB, id string) (*Member, error) {
	db = r.resolveDB(db)
	member := new(Member)
	if err := db.NewSelect().Model(member).Where("m.id = ?", id).Scan(ctx); err != nil {
		return nil, notFoundOr(err, "failed to get member")
	}
	return member, nil
}

// AttendeeExists reports whether the member is already recorded for the event.
func (r *Impl) AttendeeExists(ctx context.Context, db bun.IDB, eventID uuid.UUID, memberID string) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*EventAttendee)(nil)).
		Where("a.event_id = ?", eventID).
		Where("a.member_id = ?", memberID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check attendee: %w", err)
	}
	return exists, nil
}

// InsertAttendee records a check-in.
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

// ListAttendees returns an event's attendees in check-in order.
func (r *Impl) ListAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]EventAttendee, error) {
	db = r.resolveDB(db)
	var attendees []EventAttendee
	err := db.NewSelect().
		Model(&attendees).
		Relation("Member").
		Where("a.event_id = ?", eventID).
		Order("a.checkin_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}

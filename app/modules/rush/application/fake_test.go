package rushservice

import (
	"context"
	"sort"
	"sync"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/internal/coverimage"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Rush Repo
// ------------------------

// FakeRushRepo keeps rows in memory. Any *Func field overrides that method.
type FakeRushRepo struct {
	mu    sync.Mutex
	trace []string

	timeframes map[uuid.UUID]*rushdb.Timeframe
	events     map[uuid.UUID]*rushdb.Event
	rushees    map[string]*rushdb.Rushee
	attendees  []rushdb.EventAttendee

	GetTimeframeFunc     func(ctx context.Context, db bun.IDB, id uuid.UUID) (*rushdb.Timeframe, error)
	GetEventFunc         func(ctx context.Context, db bun.IDB, id uuid.UUID) (*rushdb.Event, error)
	InsertAttendeeFunc   func(ctx context.Context, db bun.IDB, attendee *rushdb.EventAttendee) error
	ClearDefaultFunc     func(ctx context.Context, db bun.IDB) error
	MarkDefaultFunc      func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	CreateEventFunc      func(ctx context.Context, db bun.IDB, event *rushdb.Event) error
	ListAttendeesFunc    func(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]rushdb.EventAttendee, error)
	DeleteTimeframeFunc  func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	IncrementAttendeeErr error
}

func NewFakeRushRepo() *FakeRushRepo {
	return &FakeRushRepo{
		trace:      []string{},
		timeframes: map[uuid.UUID]*rushdb.Timeframe{},
		events:     map[uuid.UUID]*rushdb.Event{},
		rushees:    map[string]*rushdb.Rushee{},
	}
}

func (f *FakeRushRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRushRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- seeding helpers ---

func (f *FakeRushRepo) addTimeframe(tf rushdb.Timeframe) *rushdb.Timeframe {
	if tf.ID == uuid.Nil {
		tf.ID = uuid.New()
	}
	f.timeframes[tf.ID] = &tf
	return &tf
}

func (f *FakeRushRepo) addEvent(e rushdb.Event) *rushdb.Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CoverImageVersion == "" {
		e.CoverImageVersion = coverimage.InitialVersion
	}
	f.events[e.ID] = &e
	return &e
}

func (f *FakeRushRepo) addRushee(r rushdb.Rushee) {
	f.rushees[r.ID] = &r
}

func (f *FakeRushRepo) defaults() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, tf := range f.timeframes {
		if tf.IsDefault {
			ids = append(ids, id)
		}
	}
	return ids
}

func (f *FakeRushRepo) eventsFor(timeframeID uuid.UUID) []rushdb.Event {
	var out []rushdb.Event
	for _, e := range f.events {
		if e.TimeframeID == timeframeID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.Before(out[j].DateCreated) })
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeRushRepo) CreateTimeframe(ctx context.Context, db bun.IDB, tf *rushdb.Timeframe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTimeframe")
	cp := *tf
	f.timeframes[tf.ID] = &cp
	return nil
}

func (f *FakeRushRepo) GetTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) (*rushdb.Timeframe, error) {
	f.mu.Lock()
	f.record("GetTimeframe")
	f.mu.Unlock()
	if f.GetTimeframeFunc != nil {
		return f.GetTimeframeFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tf, ok := f.timeframes[id]
	if !ok {
		return nil, rushdb.ErrNotFound
	}
	cp := *tf
	return &cp, nil
}

func (f *FakeRushRepo) ListTimeframes(ctx context.Context, db bun.IDB) ([]rushdb.Timeframe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTimeframes")
	out := make([]rushdb.Timeframe, 0, len(f.timeframes))
	for _, tf := range f.timeframes {
		out = append(out, *tf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.After(out[j].DateCreated) })
	return out, nil
}

func (f *FakeRushRepo) DeleteTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	f.record("DeleteTimeframe")
	f.mu.Unlock()
	if f.DeleteTimeframeFunc != nil {
		return f.DeleteTimeframeFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.timeframes[id]; !ok {
		return rushdb.ErrNotFound
	}
	delete(f.timeframes, id)
	return nil
}

func (f *FakeRushRepo) ClearDefaultTimeframes(ctx context.Context, db bun.IDB) error {
	f.mu.Lock()
	f.record("ClearDefaultTimeframes")
	f.mu.Unlock()
	if f.ClearDefaultFunc != nil {
		return f.ClearDefaultFunc(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tf := range f.timeframes {
		tf.IsDefault = false
	}
	return nil
}

func (f *FakeRushRepo) MarkDefaultTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	f.record("MarkDefaultTimeframe")
	f.mu.Unlock()
	if f.MarkDefaultFunc != nil {
		return f.MarkDefaultFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tf, ok := f.timeframes[id]
	if !ok {
		return rushdb.ErrNotFound
	}
	tf.IsDefault = true
	return nil
}

func (f *FakeRushRepo) GetDefaultTimeframe(ctx context.Context, db bun.IDB) (*rushdb.Timeframe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetDefaultTimeframe")
	for _, tf := range f.timeframes {
		if tf.IsDefault {
			cp := *tf
			return &cp, nil
		}
	}
	return nil, rushdb.ErrNotFound
}

func (f *FakeRushRepo) CreateEvent(ctx context.Context, db bun.IDB, event *rushdb.Event) error {
	f.mu.Lock()
	f.record("CreateEvent")
	f.mu.Unlock()
	if f.CreateEventFunc != nil {
		return f.CreateEventFunc(ctx, db, event)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.TimeframeID == event.TimeframeID && e.SheetTab == event.SheetTab && e.SpreadsheetCol == event.SpreadsheetCol {
			return rushdb.ErrColumnTaken
		}
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *FakeRushRepo) GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*rushdb.Event, error) {
	f.mu.Lock()
	f.record("GetEvent")
	f.mu.Unlock()
	if f.GetEventFunc != nil {
		return f.GetEventFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, rushdb.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *FakeRushRepo) ListEvents(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]rushdb.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListEvents")
	return f.eventsFor(timeframeID), nil
}

func (f *FakeRushRepo) UpdateEvent(ctx context.Context, db bun.IDB, event *rushdb.Event, columns ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateEvent")
	if _, ok := f.events[event.ID]; !ok {
		return rushdb.ErrNotFound
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *FakeRushRepo) DeleteEvent(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteEvent")
	for _, a := range f.attendees {
		if a.EventID == id {
			return errForeignKey
		}
	}
	if _, ok := f.events[id]; !ok {
		return rushdb.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *FakeRushRepo) GetRushee(ctx context.Context, db bun.IDB, id string) (*rushdb.Rushee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRushee")
	r, ok := f.rushees[id]
	if !ok {
		return nil, rushdb.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *FakeRushRepo) InsertAttendee(ctx context.Context, db bun.IDB, attendee *rushdb.EventAttendee) error {
	f.mu.Lock()
	f.record("InsertAttendee")
	f.mu.Unlock()
	if f.InsertAttendeeFunc != nil {
		return f.InsertAttendeeFunc(ctx, db, attendee)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attendees {
		if a.EventID == attendee.EventID && a.RusheeID == attendee.RusheeID {
			return rushdb.ErrDuplicate
		}
	}
	cp := *attendee
	if r, ok := f.rushees[cp.RusheeID]; ok {
		rc := *r
		cp.Rushee = &rc
	}
	f.attendees = append(f.attendees, cp)
	return nil
}

func (f *FakeRushRepo) IncrementAttendeeCount(ctx context.Context, db bun.IDB, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("IncrementAttendeeCount")
	if f.IncrementAttendeeErr != nil {
		return f.IncrementAttendeeErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return rushdb.ErrNotFound
	}
	e.NumAttendees++
	return nil
}

func (f *FakeRushRepo) ListAttendees(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]rushdb.EventAttendee, error) {
	f.mu.Lock()
	f.record("ListAttendees")
	f.mu.Unlock()
	if f.ListAttendeesFunc != nil {
		return f.ListAttendeesFunc(ctx, db, timeframeID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rushdb.EventAttendee
	for _, a := range f.attendees {
		if e, ok := f.events[a.EventID]; ok && e.TimeframeID == timeframeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeRushRepo) DeleteAttendeesForEvent(ctx context.Context, db bun.IDB, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteAttendeesForEvent")
	kept := f.attendees[:0]
	for _, a := range f.attendees {
		if a.EventID != eventID {
			kept = append(kept, a)
		}
	}
	f.attendees = kept
	return nil
}

// ------------------------
// Fake collaborators
// ------------------------

type fkError struct{}

func (fkError) Error() string { return "violates foreign key constraint" }

var errForeignKey error = fkError{}

type FakeCovers struct {
	trace       []string
	ReplaceFunc func(ctx context.Context, target coverimage.Target, image string) (coverimage.Result, error)
}

func (f *FakeCovers) Replace(ctx context.Context, target coverimage.Target, image string) (coverimage.Result, error) {
	f.trace = append(f.trace, "Replace "+target.Version)
	if f.ReplaceFunc != nil {
		return f.ReplaceFunc(ctx, target, image)
	}
	next := coverimage.FormatVersion(coverimage.ParseVersion(target.Version) + 1)
	return coverimage.Result{URL: "https://cdn.test/" + target.EventID + "/" + next, Version: next, Changed: true}, nil
}

func (f *FakeCovers) Remove(ctx context.Context, target coverimage.Target) {
	f.trace = append(f.trace, "Remove "+target.Version)
}

func (f *FakeCovers) Trace() []string { return f.trace }

type FakeEnqueuer struct {
	SheetJobs   []queue.SheetMirrorJob
	CleanupJobs []string
}

func (f *FakeEnqueuer) ScheduleSheetMirror(ctx context.Context, job queue.SheetMirrorJob) error {
	f.SheetJobs = append(f.SheetJobs, job)
	return nil
}

func (f *FakeEnqueuer) ScheduleCoverCleanup(ctx context.Context, objectPath string) error {
	f.CleanupJobs = append(f.CleanupJobs, objectPath)
	return nil
}

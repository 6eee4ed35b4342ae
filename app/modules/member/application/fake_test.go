package memberservice

import (
	"context"
	"sort"
	"sync"

	memberdb "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Member Repo
// ------------------------

// FakeMemberRepo keeps rows in memory and applies the schema's cascades. Any
// *Func field overrides that method.
type FakeMemberRepo struct {
	mu    sync.Mutex
	trace []string

	timeframes map[uuid.UUID]*memberdb.Timeframe
	events     map[uuid.UUID]*memberdb.Event
	members    map[string]*memberdb.Member
	tags       map[string]memberdb.Tag
	eventTags  map[uuid.UUID][]uuid.UUID
	attendees  []memberdb.EventAttendee

	AttendeeExistsFunc  func(ctx context.Context, db bun.IDB, eventID uuid.UUID, memberID string) (bool, error)
	InsertAttendeeFunc  func(ctx context.Context, db bun.IDB, attendee *memberdb.EventAttendee) error
	CreateEventFunc     func(ctx context.Context, db bun.IDB, event *memberdb.Event) error
	GetOrCreateTagsFunc func(ctx context.Context, db bun.IDB, names []string) ([]memberdb.Tag, error)
}

func NewFakeMemberRepo() *FakeMemberRepo {
	return &FakeMemberRepo{
		trace:      []string{},
		timeframes: map[uuid.UUID]*memberdb.Timeframe{},
		events:     map[uuid.UUID]*memberdb.Event{},
		members:    map[string]*memberdb.Member{},
		tags:       map[string]memberdb.Tag{},
		eventTags:  map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *FakeMemberRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeMemberRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- seeding helpers ---

func (f *FakeMemberRepo) addTimeframe(tf memberdb.Timeframe) *memberdb.Timeframe {
	if tf.ID == uuid.Nil {
		tf.ID = uuid.New()
	}
	f.timeframes[tf.ID] = &tf
	return &tf
}

func (f *FakeMemberRepo) addEvent(e memberdb.Event) *memberdb.Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.events[e.ID] = &e
	return &e
}

func (f *FakeMemberRepo) addMember(m memberdb.Member) {
	f.members[m.ID] = &m
}

func (f *FakeMemberRepo) attendeeCount(eventID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.attendees {
		if a.EventID == eventID {
			n++
		}
	}
	return n
}

func (f *FakeMemberRepo) tagCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tags)
}

func (f *FakeMemberRepo) deleteEventLocked(id uuid.UUID) {
	delete(f.events, id)
	delete(f.eventTags, id)
	kept := f.attendees[:0]
	for _, a := range f.attendees {
		if a.EventID != id {
			kept = append(kept, a)
		}
	}
	f.attendees = kept
}

// --- Repository Interface Implementation ---

func (f *FakeMemberRepo) CreateTimeframe(ctx context.Context, db bun.IDB, tf *memberdb.Timeframe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTimeframe")
	cp := *tf
	f.timeframes[tf.ID] = &cp
	return nil
}

func (f *FakeMemberRepo) GetTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) (*memberdb.Timeframe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTimeframe")
	tf, ok := f.timeframes[id]
	if !ok {
		return nil, memberdb.ErrNotFound
	}
	cp := *tf
	return &cp, nil
}

func (f *FakeMemberRepo) ListTimeframes(ctx context.Context, db bun.IDB) ([]memberdb.Timeframe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTimeframes")
	out := make([]memberdb.Timeframe, 0, len(f.timeframes))
	for _, tf := range f.timeframes {
		out = append(out, *tf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.After(out[j].DateCreated) })
	return out, nil
}

func (f *FakeMemberRepo) DeleteTimeframe(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTimeframe")
	if _, ok := f.timeframes[id]; !ok {
		return memberdb.ErrNotFound
	}
	for eid, e := range f.events {
		if e.TimeframeID == id {
			f.deleteEventLocked(eid)
		}
	}
	delete(f.timeframes, id)
	return nil
}

func (f *FakeMemberRepo) CreateEvent(ctx context.Context, db bun.IDB, event *memberdb.Event) error {
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
			return memberdb.ErrColumnTaken
		}
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *FakeMemberRepo) GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*memberdb.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetEvent")
	e, ok := f.events[id]
	if !ok {
		return nil, memberdb.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *FakeMemberRepo) ListEvents(ctx context.Context, db bun.IDB, timeframeID uuid.UUID) ([]memberdb.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListEvents")
	var out []memberdb.Event
	for _, e := range f.events {
		if e.TimeframeID == timeframeID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.Before(out[j].DateCreated) })
	return out, nil
}

func (f *FakeMemberRepo) UpdateEvent(ctx context.Context, db bun.IDB, event *memberdb.Event, columns ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateEvent")
	stored, ok := f.events[event.ID]
	if !ok {
		return memberdb.ErrNotFound
	}
	for _, c := range columns {
		switch c {
		case "name":
			stored.Name = event.Name
		case "code":
			stored.Code = event.Code
		}
	}
	return nil
}

func (f *FakeMemberRepo) DeleteEvent(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteEvent")
	if _, ok := f.events[id]; !ok {
		return memberdb.ErrNotFound
	}
	f.deleteEventLocked(id)
	return nil
}

func (f *FakeMemberRepo) GetOrCreateTags(ctx context.Context, db bun.IDB, names []string) ([]memberdb.Tag, error) {
	f.mu.Lock()
	f.record("GetOrCreateTags")
	f.mu.Unlock()
	if f.GetOrCreateTagsFunc != nil {
		return f.GetOrCreateTagsFunc(ctx, db, names)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]memberdb.Tag, 0, len(names))
	for _, name := range names {
		tag, ok := f.tags[name]
		if !ok {
			tag = memberdb.Tag{ID: uuid.New(), Name: name}
			f.tags[name] = tag
		}
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeMemberRepo) ListTags(ctx context.Context, db bun.IDB) ([]memberdb.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTags")
	out := make([]memberdb.Tag, 0, len(f.tags))
	for _, t := range f.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeMemberRepo) ReplaceEventTags(ctx context.Context, db bun.IDB, eventID uuid.UUID, tagIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReplaceEventTags")
	f.eventTags[eventID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

func (f *FakeMemberRepo) ListEventTags(ctx context.Context, db bun.IDB, eventIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListEventTags")
	byID := make(map[uuid.UUID]string, len(f.tags))
	for _, t := range f.tags {
		byID[t.ID] = t.Name
	}
	out := make(map[uuid.UUID][]string, len(eventIDs))
	for _, eid := range eventIDs {
		for _, tid := range f.eventTags[eid] {
			out[eid] = append(out[eid], byID[tid])
		}
		sort.Strings(out[eid])
	}
	return out, nil
}

func (f *FakeMemberRepo) GetMember(ctx context.Context, db bun.IDB, id string) (*memberdb.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetMember")
	m, ok := f.members[id]
	if !ok {
		return nil, memberdb.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *FakeMemberRepo) AttendeeExists(ctx context.Context, db bun.IDB, eventID uuid.UUID, memberID string) (bool, error) {
	f.mu.Lock()
	f.record("AttendeeExists")
	f.mu.Unlock()
	if f.AttendeeExistsFunc != nil {
		return f.AttendeeExistsFunc(ctx, db, eventID, memberID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attendees {
		if a.EventID == eventID && a.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeMemberRepo) InsertAttendee(ctx context.Context, db bun.IDB, attendee *memberdb.EventAttendee) error {
	f.mu.Lock()
	f.record("InsertAttendee")
	f.mu.Unlock()
	if f.InsertAttendeeFunc != nil {
		return f.InsertAttendeeFunc(ctx, db, attendee)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attendees {
		if a.EventID == attendee.EventID && a.MemberID == attendee.MemberID {
			return memberdb.ErrDuplicate
		}
	}
	f.attendees = append(f.attendees, *attendee)
	return nil
}

func (f *FakeMemberRepo) ListAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]memberdb.EventAttendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListAttendees")
	var out []memberdb.EventAttendee
	for _, a := range f.attendees {
		if a.EventID == eventID {
			a.Member = f.members[a.MemberID]
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckinTime.Before(out[j].CheckinTime) })
	return out, nil
}

// ------------------------
// Fake collaborators
// ------------------------

type published struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu          sync.Mutex
	Published   []published
	PublishFunc func(ctx context.Context, topic string, payload any) error
}

func (f *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.mu.Lock()
	f.Published = append(f.Published, published{Topic: topic, Payload: payload})
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, topic, payload)
	}
	return nil
}

type FakeEnqueuer struct {
	SheetJobs []queue.SheetMirrorJob
}

func (f *FakeEnqueuer) ScheduleSheetMirror(ctx context.Context, job queue.SheetMirrorJob) error {
	f.SheetJobs = append(f.SheetJobs, job)
	return nil
}

func (f *FakeEnqueuer) ScheduleCoverCleanup(ctx context.Context, objectPath string) error {
	return nil
}

var _ memberdb.Repository = (*FakeMemberRepo)(nil)

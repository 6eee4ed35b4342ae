package memberhandlers

import (
	"context"

	memberservice "github.com/Black-And-White-Club/clubhouse/app/modules/member/application"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
)

// FakeService is a programmable memberservice.Service.
type FakeService struct {
	trace []string

	CreateTimeframeFunc func(ctx context.Context, req memberservice.CreateTimeframeRequest) (*memberservice.Timeframe, error)
	GetTimeframeFunc    func(ctx context.Context, id string) (*memberservice.Timeframe, error)
	ListTimeframesFunc  func(ctx context.Context) ([]memberservice.Timeframe, error)
	DeleteTimeframeFunc func(ctx context.Context, id string) error
	ListSheetTabsFunc   func(ctx context.Context, timeframeID string) ([]string, error)
	CreateEventFunc     func(ctx context.Context, timeframeID string, req memberservice.CreateEventRequest) (*memberservice.Event, error)
	GetEventFunc        func(ctx context.Context, id string) (*memberservice.Event, error)
	UpdateEventFunc     func(ctx context.Context, id string, req memberservice.UpdateEventRequest) (*memberservice.Event, error)
	DeleteEventFunc     func(ctx context.Context, id string) error
	ListAttendeesFunc   func(ctx context.Context, eventID string) ([]memberservice.Attendee, error)
	ListTagsFunc        func(ctx context.Context) ([]memberservice.Tag, error)
	CheckInFunc         func(ctx context.Context, req memberservice.CheckInRequest) (*checkin.Result, error)
}

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeService) Trace() []string { return f.trace }

var errNotProgrammed = apperrors.Internal("FakeService", "not programmed", nil)

func (f *FakeService) CreateTimeframe(ctx context.Context, req memberservice.CreateTimeframeRequest) (*memberservice.Timeframe, error) {
	f.record("CreateTimeframe")
	if f.CreateTimeframeFunc != nil {
		return f.CreateTimeframeFunc(ctx, req)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) GetTimeframe(ctx context.Context, id string) (*memberservice.Timeframe, error) {
	f.record("GetTimeframe")
	if f.GetTimeframeFunc != nil {
		return f.GetTimeframeFunc(ctx, id)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) ListTimeframes(ctx context.Context) ([]memberservice.Timeframe, error) {
	f.record("ListTimeframes")
	if f.ListTimeframesFunc != nil {
		return f.ListTimeframesFunc(ctx)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) DeleteTimeframe(ctx context.Context, id string) error {
	f.record("DeleteTimeframe")
	if f.DeleteTimeframeFunc != nil {
		return f.DeleteTimeframeFunc(ctx, id)
	}
	return errNotProgrammed
}

func (f *FakeService) ListSheetTabs(ctx context.Context, timeframeID string) ([]string, error) {
	f.record("ListSheetTabs")
	if f.ListSheetTabsFunc != nil {
		return f.ListSheetTabsFunc(ctx, timeframeID)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) CreateEvent(ctx context.Context, timeframeID string, req memberservice.CreateEventRequest) (*memberservice.Event, error) {
	f.record("CreateEvent")
	if f.CreateEventFunc != nil {
		return f.CreateEventFunc(ctx, timeframeID, req)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) GetEvent(ctx context.Context, id string) (*memberservice.Event, error) {
	f.record("GetEvent")
	if f.GetEventFunc != nil {
		return f.GetEventFunc(ctx, id)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) UpdateEvent(ctx context.Context, id string, req memberservice.UpdateEventRequest) (*memberservice.Event, error) {
	f.record("UpdateEvent")
	if f.UpdateEventFunc != nil {
		return f.UpdateEventFunc(ctx, id, req)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) DeleteEvent(ctx context.Context, id string) error {
	f.record("DeleteEvent")
	if f.DeleteEventFunc != nil {
		return f.DeleteEventFunc(ctx, id)
	}
	return errNotProgrammed
}

func (f *FakeService) ListEventAttendees(ctx context.Context, eventID string) ([]memberservice.Attendee, error) {
	f.record("ListEventAttendees")
	if f.ListAttendeesFunc != nil {
		return f.ListAttendeesFunc(ctx, eventID)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) ListTags(ctx context.Context) ([]memberservice.Tag, error) {
	f.record("ListTags")
	if f.ListTagsFunc != nil {
		return f.ListTagsFunc(ctx)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) CheckIn(ctx context.Context, req memberservice.CheckInRequest) (*checkin.Result, error) {
	f.record("CheckIn")
	if f.CheckInFunc != nil {
		return f.CheckInFunc(ctx, req)
	}
	return nil, errNotProgrammed
}

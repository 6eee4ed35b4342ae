package rushhandlers

import (
	"context"

	rushservice "github.com/Black-And-White-Club/clubhouse/app/modules/rush/application"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
)

// FakeService is a programmable rushservice.Service.
type FakeService struct {
	trace []string

	CreateTimeframeFunc     func(ctx context.Context, req rushservice.CreateTimeframeRequest) (*rushservice.Timeframe, error)
	GetTimeframeFunc        func(ctx context.Context, id string) (*rushservice.Timeframe, error)
	ListTimeframesFunc      func(ctx context.Context) ([]rushservice.Timeframe, error)
	DeleteTimeframeFunc     func(ctx context.Context, id string) error
	ListSheetTabsFunc       func(ctx context.Context, timeframeID string) ([]string, error)
	SetDefaultTimeframeFunc func(ctx context.Context, id string) (*rushservice.Timeframe, error)
	GetDefaultTimeframeFunc func(ctx context.Context) (*rushservice.Timeframe, error)
	CreateEventFunc         func(ctx context.Context, timeframeID string, req rushservice.CreateEventRequest) (*rushservice.Event, error)
	GetEventFunc            func(ctx context.Context, id string) (*rushservice.Event, error)
	UpdateEventFunc         func(ctx context.Context, id string, req rushservice.UpdateEventRequest) (*rushservice.Event, error)
	DeleteEventFunc         func(ctx context.Context, id string) error
	CheckInFunc             func(ctx context.Context, req rushservice.CheckInRequest) (*checkin.Result, error)
	GetAnalyticsFunc        func(ctx context.Context, timeframeID string) (*rushservice.TimeframeAnalytics, error)
	ExportAnalyticsFunc     func(ctx context.Context, timeframeID string) ([]byte, error)
	RenderChartFunc         func(ctx context.Context, timeframeID string) ([]byte, error)
}

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeService) Trace() []string { return f.trace }

var errNotProgrammed = apperrors.Internal("FakeService", "not programmed", nil)

func (f *FakeService) CreateTimeframe(ctx context.Context, req rushservice.CreateTimeframeRequest) (*rushservice.Timeframe, error) {
	f.record("CreateTimeframe")
	if f.CreateTimeframeFunc != nil {
		return f.CreateTimeframeFunc(ctx, req)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) GetTimeframe(ctx context.Context, id string) (*rushservice.Timeframe, error) {
	f.record("GetTimeframe")
	if f.GetTimeframeFunc != nil {
		return f.GetTimeframeFunc(ctx, id)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) ListTimeframes(ctx context.Context) ([]rushservice.Timeframe, error) {
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

func (f *FakeService) SetDefaultTimeframe(ctx context.Context, id string) (*rushservice.Timeframe, error) {
	f.record("SetDefaultTimeframe")
	if f.SetDefaultTimeframeFunc != nil {
		return f.SetDefaultTimeframeFunc(ctx, id)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) GetDefaultTimeframe(ctx context.Context) (*rushservice.Timeframe, error) {
	f.record("GetDefaultTimeframe")
	if f.GetDefaultTimeframeFunc != nil {
		return f.GetDefaultTimeframeFunc(ctx)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) CreateEvent(ctx context.Context, timeframeID string, req rushservice.CreateEventRequest) (*rushservice.Event, error) {
	f.record("CreateEvent")
	if f.CreateEventFunc != nil {
		return f.CreateEventFunc(ctx, timeframeID, req)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) GetEvent(ctx context.Context, id string) (*rushservice.Event, error) {
	f.record("GetEvent")
	if f.GetEventFunc != nil {
		return f.GetEventFunc(ctx, id)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) UpdateEvent(ctx context.Context, id string, req rushservice.UpdateEventRequest) (*rushservice.Event, error) {
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

func (f *FakeService) CheckIn(ctx context.Context, req rushservice.CheckInRequest) (*checkin.Result, error) {
	f.record("CheckIn")
	if f.CheckInFunc != nil {
		return f.CheckInFunc(ctx, req)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) GetTimeframeAnalytics(ctx context.Context, timeframeID string) (*rushservice.TimeframeAnalytics, error) {
	f.record("GetTimeframeAnalytics")
	if f.GetAnalyticsFunc != nil {
		return f.GetAnalyticsFunc(ctx, timeframeID)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) ExportTimeframeAnalytics(ctx context.Context, timeframeID string) ([]byte, error) {
	f.record("ExportTimeframeAnalytics")
	if f.ExportAnalyticsFunc != nil {
		return f.ExportAnalyticsFunc(ctx, timeframeID)
	}
	return nil, errNotProgrammed
}

func (f *FakeService) RenderAttendanceChart(ctx context.Context, timeframeID string) ([]byte, error) {
	f.record("RenderAttendanceChart")
	if f.RenderChartFunc != nil {
		return f.RenderChartFunc(ctx, timeframeID)
	}
	return nil, errNotProgrammed
}

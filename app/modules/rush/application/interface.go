package rushservice

import (
	"context"

	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
)

// Service defines the rush track operations.
type Service interface {
	CreateTimeframe(ctx context.Context, req CreateTimeframeRequest) (*Timeframe, error)
	GetTimeframe(ctx context.Context, id string) (*Timeframe, error)
	ListTimeframes(ctx context.Context) ([]Timeframe, error)
	DeleteTimeframe(ctx context.Context, id string) error
	ListSheetTabs(ctx context.Context, timeframeID string) ([]string, error)

	// SetDefaultTimeframe makes id the only default timeframe. An empty id
	// clears the default and returns nil.
	SetDefaultTimeframe(ctx context.Context, id string) (*Timeframe, error)
	GetDefaultTimeframe(ctx context.Context) (*Timeframe, error)

	CreateEvent(ctx context.Context, timeframeID string, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error

	CheckIn(ctx context.Context, req CheckInRequest) (*checkin.Result, error)

	GetTimeframeAnalytics(ctx context.Context, timeframeID string) (*TimeframeAnalytics, error)
	ExportTimeframeAnalytics(ctx context.Context, timeframeID string) ([]byte, error)
	RenderAttendanceChart(ctx context.Context, timeframeID string) ([]byte, error)
}

package memberservice

import (
	"context"

	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
)

// Service defines the member track operations.
type Service interface {
	CreateTimeframe(ctx context.Context, req CreateTimeframeRequest) (*Timeframe, error)
	GetTimeframe(ctx context.Context, id string) (*Timeframe, error)
	ListTimeframes(ctx context.Context) ([]Timeframe, error)
	DeleteTimeframe(ctx context.Context, id string) error
	ListSheetTabs(ctx context.Context, timeframeID string) ([]string, error)

	CreateEvent(ctx context.Context, timeframeID string, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEventAttendees(ctx context.Context, eventID string) ([]Attendee, error)
	ListTags(ctx context.Context) ([]Tag, error)

	CheckIn(ctx context.Context, req CheckInRequest) (*checkin.Result, error)
}

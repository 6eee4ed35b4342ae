package rushservice

import (
	"context"
	"errors"
	"strings"
	"time"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/Black-And-White-Club/clubhouse/internal/coverimage"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateTimeframe creates a timeframe with no events.
func (s *RushService) CreateTimeframe(ctx context.Context, req CreateTimeframeRequest) (*Timeframe, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "CreateTimeframe", req.Name, func(ctx context.Context) (results.OperationResult[*Timeframe, error], error) {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return failure[*Timeframe](apperrors.BadRequest("CreateTimeframe", "timeframe name is required"))
		}
		tf := &rushdb.Timeframe{
			ID:            uuid.New(),
			Name:          name,
			SpreadsheetID: strings.TrimSpace(req.SpreadsheetID),
			DateCreated:   s.now(),
		}
		if err := s.repo.CreateTimeframe(ctx, nil, tf); err != nil {
			return infraError[*Timeframe](err)
		}
		out := toTimeframe(tf)
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// GetTimeframe returns a timeframe with its events ordered by creation time.
func (s *RushService) GetTimeframe(ctx context.Context, id string) (*Timeframe, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "GetTimeframe", id, func(ctx context.Context) (results.OperationResult[*Timeframe, error], error) {
		tf, err := s.loadTimeframe(ctx, nil, "GetTimeframe", id)
		if err != nil {
			return split[*Timeframe](err)
		}
		events, err := s.repo.ListEvents(ctx, nil, tf.ID)
		if err != nil {
			return infraError[*Timeframe](err)
		}
		out := toTimeframe(tf)
		out.Events = make([]Event, 0, len(events))
		for i := range events {
			out.Events = append(out.Events, toEvent(&events[i]))
		}
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// ListTimeframes returns every timeframe without its events.
func (s *RushService) ListTimeframes(ctx context.Context) ([]Timeframe, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "ListTimeframes", "all", func(ctx context.Context) (results.OperationResult[[]Timeframe, error], error) {
		tfs, err := s.repo.ListTimeframes(ctx, nil)
		if err != nil {
			return infraError[[]Timeframe](err)
		}
		out := make([]Timeframe, 0, len(tfs))
		for i := range tfs {
			out = append(out, toTimeframe(&tfs[i]))
		}
		return success(out)
	})
	return operation.Unwrap(result, err)
}

// DeleteTimeframe removes a timeframe with its events and their attendees.
// Rush tables do not cascade, so children are deleted first.
func (s *RushService) DeleteTimeframe(ctx context.Context, id string) error {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "DeleteTimeframe", id, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		tf, err := s.loadTimeframe(ctx, nil, "DeleteTimeframe", id)
		if err != nil {
			return split[struct{}](err)
		}
		events, err := s.repo.ListEvents(ctx, nil, tf.ID)
		if err != nil {
			return infraError[struct{}](err)
		}

		err = s.inTx(ctx, func(ctx context.Context, db bun.IDB) error {
			for _, event := range events {
				if err := s.repo.DeleteAttendeesForEvent(ctx, db, event.ID); err != nil {
					return err
				}
				if err := s.repo.DeleteEvent(ctx, db, event.ID); err != nil && !errors.Is(err, rushdb.ErrNotFound) {
					return err
				}
			}
			return s.repo.DeleteTimeframe(ctx, db, tf.ID)
		})
		if errors.Is(err, rushdb.ErrNotFound) {
			return failure[struct{}](apperrors.NotFound("DeleteTimeframe", "timeframe not found"))
		}
		if err != nil {
			return infraError[struct{}](err)
		}

		for _, event := range events {
			s.removeCover(ctx, &event)
		}
		return success(struct{}{})
	})
	_, err = operation.Unwrap(result, err)
	return err
}

// ListSheetTabs lists the tab names of the timeframe's linked spreadsheet.
func (s *RushService) ListSheetTabs(ctx context.Context, timeframeID string) ([]string, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "ListSheetTabs", timeframeID, func(ctx context.Context) (results.OperationResult[[]string, error], error) {
		tf, err := s.loadTimeframe(ctx, nil, "ListSheetTabs", timeframeID)
		if err != nil {
			return split[[]string](err)
		}
		if tf.SpreadsheetID == "" {
			return failure[[]string](apperrors.NotFound("ListSheetTabs", "timeframe has no linked spreadsheet"))
		}
		tabs, err := s.sheets.ListTabNames(ctx, tf.SpreadsheetID)
		if err != nil {
			return failure[[]string](apperrors.Upstream("ListSheetTabs", "failed to list spreadsheet tabs", err))
		}
		return success(tabs)
	})
	return operation.Unwrap(result, err)
}

// SetDefaultTimeframe clears every default flag and sets id's, in one
// transaction. An unknown id is rejected before anything is cleared.
func (s *RushService) SetDefaultTimeframe(ctx context.Context, id string) (*Timeframe, error) {
	id = strings.TrimSpace(id)
	result, err := operation.WithTelemetry(s.instrument(), ctx, "SetDefaultTimeframe", id, func(ctx context.Context) (results.OperationResult[*Timeframe, error], error) {
		if id == "" {
			if err := s.inTx(ctx, func(ctx context.Context, db bun.IDB) error {
				return s.repo.ClearDefaultTimeframes(ctx, db)
			}); err != nil {
				return infraError[*Timeframe](err)
			}
			return success[*Timeframe](nil)
		}

		tfID, ok := parseID(id)
		if !ok {
			return failure[*Timeframe](apperrors.BadRequest("SetDefaultTimeframe", "invalid default timeframe id"))
		}
		tf, err := s.repo.GetTimeframe(ctx, nil, tfID)
		if errors.Is(err, rushdb.ErrNotFound) {
			return failure[*Timeframe](apperrors.BadRequest("SetDefaultTimeframe", "invalid default timeframe id"))
		}
		if err != nil {
			return infraError[*Timeframe](err)
		}

		err = s.inTx(ctx, func(ctx context.Context, db bun.IDB) error {
			if err := s.repo.ClearDefaultTimeframes(ctx, db); err != nil {
				return err
			}
			return s.repo.MarkDefaultTimeframe(ctx, db, tf.ID)
		})
		if errors.Is(err, rushdb.ErrNotFound) {
			return failure[*Timeframe](apperrors.BadRequest("SetDefaultTimeframe", "invalid default timeframe id"))
		}
		if errors.Is(err, rushdb.ErrDefaultTaken) {
			return failure[*Timeframe](apperrors.Conflict("SetDefaultTimeframe", "default timeframe changed concurrently, try again"))
		}
		if err != nil {
			return infraError[*Timeframe](err)
		}

		tf.IsDefault = true
		out := toTimeframe(tf)
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// GetDefaultTimeframe returns the default timeframe, or NotFound when unset.
func (s *RushService) GetDefaultTimeframe(ctx context.Context) (*Timeframe, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "GetDefaultTimeframe", "default", func(ctx context.Context) (results.OperationResult[*Timeframe, error], error) {
		tf, err := s.repo.GetDefaultTimeframe(ctx, nil)
		if errors.Is(err, rushdb.ErrNotFound) {
			return failure[*Timeframe](apperrors.NotFound("GetDefaultTimeframe", "no default timeframe"))
		}
		if err != nil {
			return infraError[*Timeframe](err)
		}
		out := toTimeframe(tf)
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

func (s *RushService) removeCover(ctx context.Context, event *rushdb.Event) {
	if s.covers == nil || event.CoverImageURL == "" {
		return
	}
	s.covers.Remove(ctx, coverimage.Target{
		TimeframeID: event.TimeframeID.String(),
		EventID:     event.ID.String(),
		Version:     event.CoverImageVersion,
	})
	s.logger.InfoContext(ctx, "Removed event cover image",
		attr.ExtractCorrelationID(ctx),
		attr.String("event_id", event.ID.String()),
	)
}

func (s *RushService) now() time.Time {
	return s.clock.Now().UTC()
}

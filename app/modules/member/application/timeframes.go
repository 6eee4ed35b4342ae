package memberservice

import (
	"context"
	"errors"
	"strings"

	memberdb "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/google/uuid"
)

// CreateTimeframe creates a timeframe with no events.
func (s *MemberService) CreateTimeframe(ctx context.Context, req CreateTimeframeRequest) (*Timeframe, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "CreateTimeframe", req.Name, func(ctx context.Context) (results.OperationResult[*Timeframe, error], error) {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return failure[*Timeframe](apperrors.BadRequest("CreateTimeframe", "timeframe name is required"))
		}
		tf := &memberdb.Timeframe{
			ID:            uuid.New(),
			Name:          name,
			SpreadsheetID: strings.TrimSpace(req.SpreadsheetID),
			DateCreated:   s.clock.Now().UTC(),
		}
		if err := s.repo.CreateTimeframe(ctx, nil, tf); err != nil {
			return infraError[*Timeframe](err)
		}
		out := toTimeframe(tf)
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// GetTimeframe returns a timeframe with its tagged events ordered by creation time.
func (s *MemberService) GetTimeframe(ctx context.Context, id string) (*Timeframe, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "GetTimeframe", id, func(ctx context.Context) (results.OperationResult[*Timeframe, error], error) {
		tf, err := s.loadTimeframe(ctx, "GetTimeframe", id)
		if err != nil {
			return split[*Timeframe](err)
		}
		events, err := s.repo.ListEvents(ctx, nil, tf.ID)
		if err != nil {
			return infraError[*Timeframe](err)
		}
		ids := make([]uuid.UUID, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		tags, err := s.repo.ListEventTags(ctx, nil, ids)
		if err != nil {
			return infraError[*Timeframe](err)
		}

		out := toTimeframe(tf)
		out.Events = make([]Event, 0, len(events))
		for i := range events {
			out.Events = append(out.Events, toEvent(&events[i], tags[events[i].ID]))
		}
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// ListTimeframes returns every timeframe without its events.
func (s *MemberService) ListTimeframes(ctx context.Context) ([]Timeframe, error) {
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

// DeleteTimeframe removes a timeframe. Its events, attendees and tag links
// are removed by the schema's cascades.
func (s *MemberService) DeleteTimeframe(ctx context.Context, id string) error {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "DeleteTimeframe", id, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		tf, err := s.loadTimeframe(ctx, "DeleteTimeframe", id)
		if err != nil {
			return split[struct{}](err)
		}
		err = s.repo.DeleteTimeframe(ctx, nil, tf.ID)
		if errors.Is(err, memberdb.ErrNotFound) {
			return failure[struct{}](apperrors.NotFound("DeleteTimeframe", "timeframe not found"))
		}
		if err != nil {
			return infraError[struct{}](err)
		}
		return success(struct{}{})
	})
	_, err = operation.Unwrap(result, err)
	return err
}

// ListSheetTabs lists the tab names of the timeframe's linked spreadsheet.
func (s *MemberService) ListSheetTabs(ctx context.Context, timeframeID string) ([]string, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "ListSheetTabs", timeframeID, func(ctx context.Context) (results.OperationResult[[]string, error], error) {
		tf, err := s.loadTimeframe(ctx, "ListSheetTabs", timeframeID)
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

package rushservice

import (
	"context"
	"errors"
	"strings"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/Black-And-White-Club/clubhouse/internal/coverimage"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateEvent claims the next free column of the tab, writes the event name
// into its header and persists the event with that column.
func (s *RushService) CreateEvent(ctx context.Context, timeframeID string, req CreateEventRequest) (*Event, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "CreateEvent", timeframeID, func(ctx context.Context) (results.OperationResult[*Event, error], error) {
		tf, err := s.loadTimeframe(ctx, nil, "CreateEvent", timeframeID)
		if err != nil {
			return split[*Event](err)
		}
		if tf.SpreadsheetID == "" {
			return failure[*Event](apperrors.NotFound("CreateEvent", "timeframe has no linked spreadsheet"))
		}

		name := strings.TrimSpace(req.Name)
		tab := strings.TrimSpace(req.SheetTab)
		if name == "" || tab == "" {
			return failure[*Event](apperrors.BadRequest("CreateEvent", "event name and sheet tab are required"))
		}
		deadline, err := ParseDeadline(req.Deadline, s.clock.Now())
		if err != nil {
			return failure[*Event](apperrors.BadRequest("CreateEvent", err.Error()))
		}

		column, err := s.sheets.FindNextAvailableColumn(ctx, tf.SpreadsheetID, tab)
		if err != nil {
			return failure[*Event](apperrors.Upstream("CreateEvent", "failed to find a free spreadsheet column", err))
		}
		if err := s.sheets.WriteHeaderCell(ctx, tf.SpreadsheetID, tab, column, name); err != nil {
			return failure[*Event](apperrors.Upstream("CreateEvent", "failed to write spreadsheet header", err))
		}

		now := s.now()
		event := &rushdb.Event{
			ID:                uuid.New(),
			TimeframeID:       tf.ID,
			Name:              name,
			DateCreated:       now,
			LastModified:      now,
			SheetTab:          tab,
			SpreadsheetCol:    column,
			Code:              strings.TrimSpace(req.Code),
			Deadline:          deadline,
			CoverImageVersion: coverimage.InitialVersion,
		}

		if req.CoverImage != "" {
			if err := s.applyCover(ctx, event, req.CoverImage); err != nil {
				return split[*Event](err)
			}
		}

		if err := s.repo.CreateEvent(ctx, nil, event); err != nil {
			if errors.Is(err, rushdb.ErrColumnTaken) {
				s.removeCover(ctx, event)
				return failure[*Event](apperrors.Conflict("CreateEvent", "spreadsheet column was claimed by another event, try again"))
			}
			return infraError[*Event](err)
		}

		s.logger.InfoContext(ctx, "Rush event created",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", event.ID.String()),
			attr.String("sheet_tab", tab),
			attr.String("spreadsheet_col", column),
		)
		out := toEvent(event)
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// GetEvent returns an event by id.
func (s *RushService) GetEvent(ctx context.Context, id string) (*Event, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "GetEvent", id, func(ctx context.Context) (results.OperationResult[*Event, error], error) {
		event, err := s.loadEvent(ctx, nil, "GetEvent", id)
		if err != nil {
			return split[*Event](err)
		}
		out := toEvent(event)
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// UpdateEvent patches an event's name, code, deadline or cover image. The
// sheet tab and column never change.
func (s *RushService) UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*Event, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "UpdateEvent", id, func(ctx context.Context) (results.OperationResult[*Event, error], error) {
		event, err := s.loadEvent(ctx, nil, "UpdateEvent", id)
		if err != nil {
			return split[*Event](err)
		}

		var columns []string
		renamed := false
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return failure[*Event](apperrors.BadRequest("UpdateEvent", "event name cannot be empty"))
			}
			renamed = name != event.Name
			event.Name = name
			columns = append(columns, "name")
		}
		if req.Code != nil {
			event.Code = strings.TrimSpace(*req.Code)
			columns = append(columns, "code")
		}
		if req.Deadline != nil {
			deadline, err := ParseDeadline(*req.Deadline, s.clock.Now())
			if err != nil {
				return failure[*Event](apperrors.BadRequest("UpdateEvent", err.Error()))
			}
			event.Deadline = deadline
			columns = append(columns, "deadline")
		}
		if req.CoverImage != nil {
			previous := event.CoverImageVersion
			if err := s.applyCover(ctx, event, *req.CoverImage); err != nil {
				return split[*Event](err)
			}
			if event.CoverImageVersion != previous {
				columns = append(columns, "cover_image_url", "cover_image_version")
			}
		}

		if len(columns) == 0 {
			out := toEvent(event)
			return success(&out)
		}

		if err := s.repo.UpdateEvent(ctx, nil, event, columns...); err != nil {
			if errors.Is(err, rushdb.ErrNotFound) {
				return failure[*Event](apperrors.NotFound("UpdateEvent", "event not found"))
			}
			return infraError[*Event](err)
		}

		if renamed {
			s.renameHeader(ctx, event)
		}
		out := toEvent(event)
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// DeleteEvent removes an event and its attendee rows, then its cover image.
func (s *RushService) DeleteEvent(ctx context.Context, id string) error {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "DeleteEvent", id, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		event, err := s.loadEvent(ctx, nil, "DeleteEvent", id)
		if err != nil {
			return split[struct{}](err)
		}
		err = s.inTx(ctx, func(ctx context.Context, db bun.IDB) error {
			if err := s.repo.DeleteAttendeesForEvent(ctx, db, event.ID); err != nil {
				return err
			}
			return s.repo.DeleteEvent(ctx, db, event.ID)
		})
		if errors.Is(err, rushdb.ErrNotFound) {
			return failure[struct{}](apperrors.NotFound("DeleteEvent", "event not found"))
		}
		if err != nil {
			return infraError[struct{}](err)
		}
		s.removeCover(ctx, event)
		return success(struct{}{})
	})
	_, err = operation.Unwrap(result, err)
	return err
}

// applyCover uploads image as the event's next cover version.
func (s *RushService) applyCover(ctx context.Context, event *rushdb.Event, image string) error {
	if s.covers == nil {
		return apperrors.BadRequest("CoverImage", "cover images are not enabled")
	}
	res, err := s.covers.Replace(ctx, coverimage.Target{
		TimeframeID: event.TimeframeID.String(),
		EventID:     event.ID.String(),
		Version:     event.CoverImageVersion,
	}, image)
	if err != nil {
		return err
	}
	if res.Changed {
		event.CoverImageURL = res.URL
		event.CoverImageVersion = res.Version
	}
	return nil
}

// renameHeader rewrites the header of the event's column. The roster is
// advisory so failures are only logged.
func (s *RushService) renameHeader(ctx context.Context, event *rushdb.Event) {
	tf, err := s.repo.GetTimeframe(ctx, nil, event.TimeframeID)
	if err != nil || tf.SpreadsheetID == "" {
		return
	}
	if err := s.sheets.WriteHeaderCell(ctx, tf.SpreadsheetID, event.SheetTab, event.SpreadsheetCol, event.Name); err != nil {
		s.logger.WarnContext(ctx, "Failed to rename spreadsheet header",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", event.ID.String()),
			attr.Error(err),
		)
	}
}

package memberservice

import (
	"context"
	"errors"
	"strings"

	memberdb "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/google/uuid"
)

// CreateEvent resolves the tags, claims the next free column of the tab,
// writes the header, and persists the event and then its tag links. A failure
// part way leaves at most unreferenced tags behind.
func (s *MemberService) CreateEvent(ctx context.Context, timeframeID string, req CreateEventRequest) (*Event, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "CreateEvent", timeframeID, func(ctx context.Context) (results.OperationResult[*Event, error], error) {
		tf, err := s.loadTimeframe(ctx, "CreateEvent", timeframeID)
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

		tagNames := normalizeTags(req.Tags)
		tags, err := s.repo.GetOrCreateTags(ctx, nil, tagNames)
		if err != nil {
			return infraError[*Event](err)
		}

		column, err := s.sheets.FindNextAvailableColumn(ctx, tf.SpreadsheetID, tab)
		if err != nil {
			return failure[*Event](apperrors.Upstream("CreateEvent", "failed to find a free spreadsheet column", err))
		}
		if err := s.sheets.WriteHeaderCell(ctx, tf.SpreadsheetID, tab, column, name); err != nil {
			return failure[*Event](apperrors.Upstream("CreateEvent", "failed to write spreadsheet header", err))
		}

		now := s.clock.Now().UTC()
		event := &memberdb.Event{
			ID:             uuid.New(),
			TimeframeID:    tf.ID,
			Name:           name,
			DateCreated:    now,
			LastModified:   now,
			SheetTab:       tab,
			SpreadsheetCol: column,
			Code:           strings.TrimSpace(req.Code),
		}
		if err := s.repo.CreateEvent(ctx, nil, event); err != nil {
			if errors.Is(err, memberdb.ErrColumnTaken) {
				return failure[*Event](apperrors.Conflict("CreateEvent", "spreadsheet column was claimed by another event, try again"))
			}
			return infraError[*Event](err)
		}

		if err := s.repo.ReplaceEventTags(ctx, nil, event.ID, tagIDs(tags)); err != nil {
			return infraError[*Event](err)
		}

		s.logger.InfoContext(ctx, "Member event created",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", event.ID.String()),
			attr.String("sheet_tab", tab),
			attr.String("spreadsheet_col", column),
			attr.Int("tags", len(tags)),
		)
		out := toEvent(event, tagNamesOf(tags))
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// GetEvent returns an event with its tags.
func (s *MemberService) GetEvent(ctx context.Context, id string) (*Event, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "GetEvent", id, func(ctx context.Context) (results.OperationResult[*Event, error], error) {
		event, err := s.loadEvent(ctx, "GetEvent", id)
		if err != nil {
			return split[*Event](err)
		}
		tags, err := s.repo.ListEventTags(ctx, nil, []uuid.UUID{event.ID})
		if err != nil {
			return infraError[*Event](err)
		}
		out := toEvent(event, tags[event.ID])
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// UpdateEvent patches an event's name, code or tags. The sheet tab and column
// never change.
func (s *MemberService) UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*Event, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "UpdateEvent", id, func(ctx context.Context) (results.OperationResult[*Event, error], error) {
		event, err := s.loadEvent(ctx, "UpdateEvent", id)
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

		if len(columns) > 0 {
			err := s.repo.UpdateEvent(ctx, nil, event, columns...)
			if errors.Is(err, memberdb.ErrNotFound) {
				return failure[*Event](apperrors.NotFound("UpdateEvent", "event not found"))
			}
			if err != nil {
				return infraError[*Event](err)
			}
		}

		if req.Tags != nil {
			tags, err := s.repo.GetOrCreateTags(ctx, nil, normalizeTags(*req.Tags))
			if err != nil {
				return infraError[*Event](err)
			}
			if err := s.repo.ReplaceEventTags(ctx, nil, event.ID, tagIDs(tags)); err != nil {
				return infraError[*Event](err)
			}
		}

		if renamed {
			s.renameHeader(ctx, event)
		}

		current, err := s.repo.ListEventTags(ctx, nil, []uuid.UUID{event.ID})
		if err != nil {
			return infraError[*Event](err)
		}
		out := toEvent(event, current[event.ID])
		return success(&out)
	})
	return operation.Unwrap(result, err)
}

// DeleteEvent removes an event; attendees and tag links cascade.
func (s *MemberService) DeleteEvent(ctx context.Context, id string) error {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "DeleteEvent", id, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		event, err := s.loadEvent(ctx, "DeleteEvent", id)
		if err != nil {
			return split[struct{}](err)
		}
		err = s.repo.DeleteEvent(ctx, nil, event.ID)
		if errors.Is(err, memberdb.ErrNotFound) {
			return failure[struct{}](apperrors.NotFound("DeleteEvent", "event not found"))
		}
		if err != nil {
			return infraError[struct{}](err)
		}
		return success(struct{}{})
	})
	_, err = operation.Unwrap(result, err)
	return err
}

// ListEventAttendees returns the members checked in to an event.
func (s *MemberService) ListEventAttendees(ctx context.Context, eventID string) ([]Attendee, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "ListEventAttendees", eventID, func(ctx context.Context) (results.OperationResult[[]Attendee, error], error) {
		event, err := s.loadEvent(ctx, "ListEventAttendees", eventID)
		if err != nil {
			return split[[]Attendee](err)
		}
		rows, err := s.repo.ListAttendees(ctx, nil, event.ID)
		if err != nil {
			return infraError[[]Attendee](err)
		}
		out := make([]Attendee, 0, len(rows))
		for _, row := range rows {
			a := Attendee{MemberID: row.MemberID, CheckinTime: row.CheckinTime}
			if row.Member != nil {
				a.Name = row.Member.Name
				a.Email = row.Member.Email
			}
			out = append(out, a)
		}
		return success(out)
	})
	return operation.Unwrap(result, err)
}

// ListTags returns every known tag.
func (s *MemberService) ListTags(ctx context.Context) ([]Tag, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "ListTags", "all", func(ctx context.Context) (results.OperationResult[[]Tag, error], error) {
		tags, err := s.repo.ListTags(ctx, nil)
		if err != nil {
			return infraError[[]Tag](err)
		}
		out := make([]Tag, 0, len(tags))
		for _, t := range tags {
			out = append(out, Tag{ID: t.ID.String(), Name: t.Name})
		}
		return success(out)
	})
	return operation.Unwrap(result, err)
}

func (s *MemberService) renameHeader(ctx context.Context, event *memberdb.Event) {
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

func tagIDs(tags []memberdb.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func tagNamesOf(tags []memberdb.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

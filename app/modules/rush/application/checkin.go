package rushservice

import (
	"context"
	"errors"
	"strings"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/uptrace/bun"
)

// CheckIn records a rushee at an event. Checks run in order: event exists,
// deadline not passed, code matches, rushee exists, not already checked in.
func (s *RushService) CheckIn(ctx context.Context, req CheckInRequest) (*checkin.Result, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "CheckIn", req.EventID, func(ctx context.Context) (results.OperationResult[*checkin.Result, error], error) {
		return s.checkInLogic(ctx, req)
	})
	return operation.Unwrap(result, err)
}

func (s *RushService) checkInLogic(ctx context.Context, req CheckInRequest) (results.OperationResult[*checkin.Result, error], error) {
	event, err := s.loadEvent(ctx, nil, "CheckIn", req.EventID)
	if err != nil {
		return split[*checkin.Result](err)
	}

	now := s.clock.Now()
	if now.After(event.Deadline) {
		return failure[*checkin.Result](apperrors.Unauthorized("CheckIn", "deadline passed"))
	}
	if !checkin.CodeMatches(event.Code, req.Code) {
		return failure[*checkin.Result](apperrors.Unauthorized("CheckIn", "invalid check-in code"))
	}

	rushee, err := s.repo.GetRushee(ctx, nil, strings.TrimSpace(req.RusheeID))
	if errors.Is(err, rushdb.ErrNotFound) {
		return failure[*checkin.Result](apperrors.NotFound("CheckIn", "rushee not found"))
	}
	if err != nil {
		return infraError[*checkin.Result](err)
	}

	attendee := &rushdb.EventAttendee{
		EventID:     event.ID,
		RusheeID:    rushee.ID,
		CheckinTime: now.UTC(),
	}
	// The primary key on (event_id, rushee_id) settles concurrent duplicates.
	err = s.inTx(ctx, func(ctx context.Context, db bun.IDB) error {
		if err := s.repo.InsertAttendee(ctx, db, attendee); err != nil {
			return err
		}
		return s.repo.IncrementAttendeeCount(ctx, db, event.ID)
	})
	if errors.Is(err, rushdb.ErrDuplicate) {
		return failure[*checkin.Result](apperrors.Conflict("CheckIn", "already checked in"))
	}
	if errors.Is(err, rushdb.ErrNotFound) {
		return failure[*checkin.Result](apperrors.NotFound("CheckIn", "event not found"))
	}
	if err != nil {
		return infraError[*checkin.Result](err)
	}

	res := &checkin.Result{
		EventID:     event.ID.String(),
		PersonID:    rushee.ID,
		CheckinTime: attendee.CheckinTime,
	}

	spreadsheetID := ""
	if tf, err := s.repo.GetTimeframe(ctx, nil, event.TimeframeID); err == nil {
		spreadsheetID = tf.SpreadsheetID
	}
	s.mirror.Apply(ctx, checkin.Target{
		SpreadsheetID: spreadsheetID,
		Tab:           event.SheetTab,
		Column:        event.SpreadsheetCol,
		Identity:      rushee.Email,
	}, res)

	return success(res)
}

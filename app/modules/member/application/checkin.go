package memberservice

import (
	"context"
	"errors"
	"strings"

	memberdb "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
)

// CheckIn records a member at an event. Checks run in order: event exists,
// code matches, member exists, not already checked in.
func (s *MemberService) CheckIn(ctx context.Context, req CheckInRequest) (*checkin.Result, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "CheckIn", req.EventID, func(ctx context.Context) (results.OperationResult[*checkin.Result, error], error) {
		return s.checkInLogic(ctx, req)
	})
	return operation.Unwrap(result, err)
}

func (s *MemberService) checkInLogic(ctx context.Context, req CheckInRequest) (results.OperationResult[*checkin.Result, error], error) {
	event, err := s.loadEvent(ctx, "CheckIn", req.EventID)
	if err != nil {
		return split[*checkin.Result](err)
	}
	if !checkin.CodeMatches(event.Code, req.Code) {
		return failure[*checkin.Result](apperrors.Unauthorized("CheckIn", "invalid check-in code"))
	}

	member, err := s.repo.GetMember(ctx, nil, strings.TrimSpace(req.MemberID))
	if errors.Is(err, memberdb.ErrNotFound) {
		return failure[*checkin.Result](apperrors.NotFound("CheckIn", "member not found"))
	}
	if err != nil {
		return infraError[*checkin.Result](err)
	}

	exists, err := s.repo.AttendeeExists(ctx, nil, event.ID, member.ID)
	if err != nil {
		return infraError[*checkin.Result](err)
	}
	if exists {
		return failure[*checkin.Result](apperrors.Conflict("CheckIn", "already checked in"))
	}

	attendee := &memberdb.EventAttendee{
		EventID:     event.ID,
		MemberID:    member.ID,
		CheckinTime: s.clock.Now().UTC(),
	}
	// A concurrent duplicate that slipped past the read lands on the primary key.
	err = s.repo.InsertAttendee(ctx, nil, attendee)
	if errors.Is(err, memberdb.ErrDuplicate) {
		return failure[*checkin.Result](apperrors.Conflict("CheckIn", "already checked in"))
	}
	if err != nil {
		return infraError[*checkin.Result](err)
	}

	res := &checkin.Result{
		EventID:     event.ID.String(),
		PersonID:    member.ID,
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
		Identity:      member.Email,
	}, res)

	s.publishCheckin(ctx, event, member, res)
	return success(res)
}

func (s *MemberService) publishCheckin(ctx context.Context, event *memberdb.Event, member *memberdb.Member, res *checkin.Result) {
	if s.events == nil {
		return
	}
	payload := CheckinRecorded{
		EventID:     res.EventID,
		EventName:   event.Name,
		MemberID:    member.ID,
		MemberName:  member.Name,
		MemberEmail: member.Email,
		CheckinTime: res.CheckinTime,
	}
	if err := s.events.Publish(ctx, TopicCheckinRecorded, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish check-in event",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", res.EventID),
			attr.String("member_id", member.ID),
			attr.Error(err),
		)
	}
}

package memberservice

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	memberdb "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
	"github.com/Black-And-White-Club/clubhouse/app/shared/clock"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/Black-And-White-Club/clubhouse/internal/eventbus"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "MemberService"

// Collaborators are the external systems the member track talks to.
type Collaborators struct {
	Sheets  sheets.Spreadsheet
	Retries queue.Enqueuer
	Events  eventbus.Publisher
}

// Options tune check-in behaviour.
type Options struct {
	IdentityColumn string
	CheckinMarker  string
	Clock          clock.Clock
}

// MemberService implements the Service interface.
type MemberService struct {
	repo    memberdb.Repository
	sheets  sheets.Spreadsheet
	events  eventbus.Publisher
	mirror  checkin.Mirror
	clock   clock.Clock
	logger  *slog.Logger
	metrics observability.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
}

// NewMemberService creates a new MemberService.
func NewMemberService(
	repo memberdb.Repository,
	collab Collaborators,
	opts Options,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *MemberService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &MemberService{
		repo:   repo,
		sheets: collab.Sheets,
		events: collab.Events,
		mirror: checkin.Mirror{
			Sheets:         collab.Sheets,
			Retries:        collab.Retries,
			IdentityColumn: opts.IdentityColumn,
			Marker:         opts.CheckinMarker,
			Logger:         logger,
		},
		clock:   opts.Clock,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
	}
}

func (s *MemberService) instrument() operation.Instrument {
	return operation.Instrument{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}

func parseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func failure[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

func success[S any](v S) (results.OperationResult[S, error], error) {
	return results.SuccessResult[S, error](v), nil
}

func infraError[S any](err error) (results.OperationResult[S, error], error) {
	return results.OperationResult[S, error]{}, err
}

func split[S any](err error) (results.OperationResult[S, error], error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind != apperrors.KindInternal {
		return failure[S](err)
	}
	return infraError[S](err)
}

func (s *MemberService) loadTimeframe(ctx context.Context, op, raw string) (*memberdb.Timeframe, error) {
	id, ok := parseID(raw)
	if !ok {
		return nil, apperrors.NotFound(op, "timeframe not found")
	}
	tf, err := s.repo.GetTimeframe(ctx, nil, id)
	if errors.Is(err, memberdb.ErrNotFound) {
		return nil, apperrors.NotFound(op, "timeframe not found")
	}
	return tf, err
}

func (s *MemberService) loadEvent(ctx context.Context, op, raw string) (*memberdb.Event, error) {
	id, ok := parseID(raw)
	if !ok {
		return nil, apperrors.NotFound(op, "event not found")
	}
	event, err := s.repo.GetEvent(ctx, nil, id)
	if errors.Is(err, memberdb.ErrNotFound) {
		return nil, apperrors.NotFound(op, "event not found")
	}
	return event, err
}

// normalizeTags trims, drops empties and de-duplicates case-insensitively,
// keeping the first spelling seen.
func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

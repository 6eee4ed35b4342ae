package rushservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/checkin"
	"github.com/Black-And-White-Club/clubhouse/app/shared/clock"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/Black-And-White-Club/clubhouse/internal/coverimage"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RushService"

// CoverImages replaces and removes event cover images.
type CoverImages interface {
	Replace(ctx context.Context, target coverimage.Target, image string) (coverimage.Result, error)
	Remove(ctx context.Context, target coverimage.Target)
}

// Collaborators are the external systems the rush track writes to.
type Collaborators struct {
	Sheets  sheets.Spreadsheet
	Covers  CoverImages
	Retries queue.Enqueuer
}

// Options tune check-in and analytics behaviour.
type Options struct {
	IdentityColumn string
	CheckinMarker  string
	Threshold      ThresholdRule
	Clock          clock.Clock
}

// RushService implements the Service interface.
type RushService struct {
	repo      rushdb.Repository
	sheets    sheets.Spreadsheet
	covers    CoverImages
	mirror    checkin.Mirror
	threshold ThresholdRule
	clock     clock.Clock
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
}

// NewRushService creates a new RushService.
func NewRushService(
	repo rushdb.Repository,
	collab Collaborators,
	opts Options,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *RushService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &RushService{
		repo:   repo,
		sheets: collab.Sheets,
		covers: collab.Covers,
		mirror: checkin.Mirror{
			Sheets:         collab.Sheets,
			Retries:        collab.Retries,
			IdentityColumn: opts.IdentityColumn,
			Marker:         opts.CheckinMarker,
			Logger:         logger,
		},
		threshold: opts.Threshold,
		clock:     opts.Clock,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

func (s *RushService) instrument() operation.Instrument {
	return operation.Instrument{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}

// inTx runs fn in a transaction, or directly when the service has no database.
func (s *RushService) inTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
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

// classified reports whether err already carries a client-facing kind.
func classified(err error) bool {
	var appErr *apperrors.Error
	return errors.As(err, &appErr) && appErr.Kind != apperrors.KindInternal
}

// loadTimeframe resolves a timeframe id, turning bad or unknown ids into NotFound.
func (s *RushService) loadTimeframe(ctx context.Context, db bun.IDB, op, raw string) (*rushdb.Timeframe, error) {
	id, ok := parseID(raw)
	if !ok {
		return nil, apperrors.NotFound(op, "timeframe not found")
	}
	tf, err := s.repo.GetTimeframe(ctx, db, id)
	if errors.Is(err, rushdb.ErrNotFound) {
		return nil, apperrors.NotFound(op, "timeframe not found")
	}
	return tf, err
}

func (s *RushService) loadEvent(ctx context.Context, db bun.IDB, op, raw string) (*rushdb.Event, error) {
	id, ok := parseID(raw)
	if !ok {
		return nil, apperrors.NotFound(op, "event not found")
	}
	event, err := s.repo.GetEvent(ctx, db, id)
	if errors.Is(err, rushdb.ErrNotFound) {
		return nil, apperrors.NotFound(op, "event not found")
	}
	return event, err
}

// split separates client-facing failures from infrastructure errors.
func split[S any](err error) (results.OperationResult[S, error], error) {
	if classified(err) {
		return failure[S](err)
	}
	return infraError[S](err)
}

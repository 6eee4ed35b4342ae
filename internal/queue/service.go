// Package queue runs background retries on River.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/clubhouse/internal/objectstore"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const (
	queueSheets  = "sheets"
	queueCleanup = "cleanup"
)

// Enqueuer schedules retries. Services depend on this rather than on River.
type Enqueuer interface {
	ScheduleSheetMirror(ctx context.Context, job SheetMirrorJob) error
	ScheduleCoverCleanup(ctx context.Context, objectPath string) error
}

// Config sizes the worker pools.
type Config struct {
	DSN        string
	MaxWorkers int
}

// Service owns the River client and its pgx pool.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// NewService connects to Postgres and registers the workers.
func NewService(ctx context.Context, cfg Config, sp sheets.Spreadsheet, store objectstore.Store, logger *slog.Logger, metrics observability.OperationMetrics) (*Service, error) {
	ctxLogger := logger.With(attr.String("component", "river_queue"))
	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSheetMirrorWorker(sp, ctxLogger))
	river.AddWorker(workers, NewCoverCleanupWorker(store, ctxLogger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
			queueSheets:        {MaxWorkers: maxWorkers},
			queueCleanup:       {MaxWorkers: max(maxWorkers/2, 1)},
		},
		Workers: workers,
		Logger:  ctxLogger,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.InfoContext(ctx, "Queue service initialized")

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

// Start begins working jobs.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Queue service started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Queue service stopped")
	return nil
}

// HealthCheck pings the queue's database pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Service) ScheduleSheetMirror(ctx context.Context, job SheetMirrorJob) error {
	return s.insert(ctx, "schedule_sheet_mirror", job, &river.InsertOpts{
		Queue:       queueSheets,
		MaxAttempts: 8,
		ScheduledAt: time.Now().Add(30 * time.Second),
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	})
}

func (s *Service) ScheduleCoverCleanup(ctx context.Context, objectPath string) error {
	return s.insert(ctx, "schedule_cover_cleanup", CoverCleanupJob{Path: objectPath}, &river.InsertOpts{
		Queue:       queueCleanup,
		MaxAttempts: 5,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	})
}

func (s *Service) insert(ctx context.Context, operation string, args river.JobArgs, opts *river.InsertOpts) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, "river")

	res, err := s.client.Insert(ctx, args, opts)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operation, "river")
		s.logger.ErrorContext(ctx, "Failed to enqueue job",
			attr.ExtractCorrelationID(ctx),
			attr.String("kind", args.Kind()),
			attr.Error(err),
		)
		return fmt.Errorf("failed to enqueue %s job: %w", args.Kind(), err)
	}

	s.metrics.RecordOperationSuccess(ctx, operation, "river")
	s.metrics.RecordOperationDuration(ctx, operation, "river", time.Since(start))
	s.logger.InfoContext(ctx, "Enqueued job",
		attr.ExtractCorrelationID(ctx),
		attr.String("kind", args.Kind()),
		attr.Int64("job_id", res.Job.ID),
	)
	return nil
}

// NoopEnqueuer logs and drops jobs. It is used when the queue is disabled.
type NoopEnqueuer struct {
	Logger *slog.Logger
}

func (n NoopEnqueuer) ScheduleSheetMirror(ctx context.Context, job SheetMirrorJob) error {
	n.log(ctx, job.Kind())
	return nil
}

func (n NoopEnqueuer) ScheduleCoverCleanup(ctx context.Context, objectPath string) error {
	n.log(ctx, CoverCleanupJob{}.Kind())
	return nil
}

func (n NoopEnqueuer) log(ctx context.Context, kind string) {
	if n.Logger != nil {
		n.Logger.WarnContext(ctx, "Queue disabled, dropping retry job", attr.String("kind", kind))
	}
}

var (
	_ Enqueuer = (*Service)(nil)
	_ Enqueuer = NoopEnqueuer{}
)

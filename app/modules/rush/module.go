package rush

import (
	"context"
	"sync"

	rushservice "github.com/Black-And-White-Club/clubhouse/app/modules/rush/application"
	rushhandlers "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/handlers"
	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/httpx"
	"github.com/Black-And-White-Club/clubhouse/config"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the rush module.
type Module struct {
	RushService   rushservice.Service
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewRushModule creates the rush module and mounts its routes under /api/rush.
func NewRushModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	collab rushservice.Collaborators,
	httpRouter chi.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "rush.NewRushModule initializing")

	repo := rushdb.NewRepository(db)

	opts := rushservice.Options{
		IdentityColumn: cfg.Sheets.IdentityColumn,
		CheckinMarker:  cfg.Sheets.CheckinMarker,
		Threshold: rushservice.ThresholdRule{
			Mandatory:    cfg.Analytics.MandatoryEvents,
			Remaining:    cfg.Analytics.RemainingEvents,
			RemainingMin: *cfg.Analytics.RemainingMin,
		},
	}
	service := rushservice.NewRushService(repo, collab, opts, logger, obs.Registry.Metrics, tracer, db)

	handlers := rushhandlers.NewRushHandlers(service, logger, tracer)

	if httpRouter != nil {
		limiter := httpx.NewIPRateLimiter(rate.Limit(cfg.HTTP.CheckinRatePerSecond), cfg.HTTP.CheckinBurst)
		httpRouter.Route("/api/rush", func(r chi.Router) {
			r.Use(httpx.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			handlers.Mount(r, limiter)
		})
	}

	return &Module{
		RushService:   service,
		observability: obs,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting rush module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Rush module goroutine stopped")
}

// Close shuts down the rush module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping rush module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Rush module stopped")
	return nil
}

package member

import (
	"context"
	"net/mail"
	"sync"

	memberservice "github.com/Black-And-White-Club/clubhouse/app/modules/member/application"
	memberhandlers "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/handlers"
	memberdb "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/repositories"
	membersubscribers "github.com/Black-And-White-Club/clubhouse/app/modules/member/infrastructure/subscribers"
	"github.com/Black-And-White-Club/clubhouse/app/shared/httpx"
	"github.com/Black-And-White-Club/clubhouse/config"
	"github.com/Black-And-White-Club/clubhouse/internal/email"
	"github.com/Black-And-White-Club/clubhouse/internal/eventbus"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the member module.
type Module struct {
	MemberService memberservice.Service
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewMemberModule creates the member module, subscribes its confirmation
// notifier and mounts its routes under /api/member.
func NewMemberModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	sp sheets.Spreadsheet,
	retries queue.Enqueuer,
	bus *eventbus.Bus,
	sender email.Sender,
	httpRouter chi.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "member.NewMemberModule initializing")

	repo := memberdb.NewRepository(db)

	collab := memberservice.Collaborators{Sheets: sp, Retries: retries}
	if bus != nil {
		collab.Events = bus
	}
	service := memberservice.NewMemberService(
		repo,
		collab,
		memberservice.Options{
			IdentityColumn: cfg.Sheets.IdentityColumn,
			CheckinMarker:  cfg.Sheets.CheckinMarker,
		},
		logger,
		obs.Registry.Metrics,
		tracer,
		db,
	)

	if bus != nil && sender != nil {
		from := mail.Address{Name: cfg.Email.FromName, Address: cfg.Email.FromAddress}
		membersubscribers.NewConfirmationNotifier(sender, from, logger, tracer).Register(bus)
	}

	handlers := memberhandlers.NewMemberHandlers(service, logger, tracer)

	if httpRouter != nil {
		limiter := httpx.NewIPRateLimiter(rate.Limit(cfg.HTTP.CheckinRatePerSecond), cfg.HTTP.CheckinBurst)
		httpRouter.Route("/api/member", func(r chi.Router) {
			r.Use(httpx.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			handlers.Mount(r, limiter)
		})
	}

	return &Module{
		MemberService: service,
		observability: obs,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting member module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Member module goroutine stopped")
}

// Close shuts down the member module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping member module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Member module stopped")
	return nil
}

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"sync"
	"time"

	"github.com/Black-And-White-Club/clubhouse/app/modules/member"
	"github.com/Black-And-White-Club/clubhouse/app/modules/rush"
	rushservice "github.com/Black-And-White-Club/clubhouse/app/modules/rush/application"
	"github.com/Black-And-White-Club/clubhouse/app/shared/httpx"
	"github.com/Black-And-White-Club/clubhouse/config"
	"github.com/Black-And-White-Club/clubhouse/internal/coverimage"
	"github.com/Black-And-White-Club/clubhouse/internal/email"
	"github.com/Black-And-White-Club/clubhouse/internal/eventbus"
	"github.com/Black-And-White-Club/clubhouse/internal/objectstore"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const shutdownTimeout = 15 * time.Second

// App holds every long-lived component of the API server.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	Router        chi.Router

	Sheets sheets.Spreadsheet
	Store  objectstore.Store
	Queue  *queue.Service
	Bus    *eventbus.Bus
	Sender email.Sender

	MemberModule *member.Module
	RushModule   *rush.Module

	server        *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// New connects to the database and the external collaborators, then builds
// both attendance tracks on a shared router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.Init(observability.Config{
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Observability.Environment,
	})
	logger := obs.Provider.Logger

	a := &App{Config: cfg, Observability: obs}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = bun.NewDB(sqldb, pgdialect.New())

	sp, err := newSpreadsheet(ctx, cfg.Sheets, logger)
	if err != nil {
		a.DB.Close()
		return nil, err
	}
	a.Sheets = sp

	store, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		a.DB.Close()
		return nil, err
	}
	a.Store = store

	var retries queue.Enqueuer = queue.NoopEnqueuer{Logger: logger}
	if cfg.Queue.Enabled {
		qs, err := queue.NewService(ctx, queue.Config{
			DSN:        cfg.Postgres.DSN,
			MaxWorkers: cfg.Queue.MaxWorkers,
		}, sp, store, logger, obs.Registry.Metrics)
		if err != nil {
			a.DB.Close()
			return nil, fmt.Errorf("failed to create queue service: %w", err)
		}
		a.Queue = qs
		retries = qs
	}

	covers := coverimage.NewManager(store, cfg.Storage.EnvironmentPrefix, retries, logger)

	a.Sender = newSender(cfg.Email, logger)

	bus, err := eventbus.New(eventbus.Config{MaxRetries: 3, InitialInterval: time.Second}, logger)
	if err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	a.Bus = bus

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", a.handleHealth)
	router.Handle("/metrics", promhttp.HandlerFor(obs.Registry.Prometheus, promhttp.HandlerOpts{}))
	a.Router = router

	a.MemberModule, err = member.NewMemberModule(ctx, cfg, obs, sp, retries, bus, a.Sender, router, a.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize member module: %w", err)
	}

	a.RushModule, err = rush.NewRushModule(ctx, cfg, obs, rushservice.Collaborators{
		Sheets:  sp,
		Covers:  covers,
		Retries: retries,
	}, router, a.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize rush module: %w", err)
	}

	a.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if addr := cfg.Observability.MetricsAddress; addr != "" && addr != cfg.HTTP.Addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry.Prometheus, promhttp.HandlerOpts{}))
		a.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("http_addr", cfg.HTTP.Addr),
		attr.String("sheets_driver", cfg.Sheets.Driver),
		attr.String("storage_driver", cfg.Storage.Driver),
		attr.String("email_driver", cfg.Email.Driver),
		attr.Bool("queue_enabled", cfg.Queue.Enabled),
	)
	return a, nil
}

// Run starts the bus, the queue, both modules and the HTTP server, and blocks
// until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Provider.Logger

	go func() {
		if err := a.Bus.Run(ctx); err != nil {
			logger.ErrorContext(ctx, "Event bus stopped", attr.Error(err))
		}
	}()
	<-a.Bus.Running()

	if a.Queue != nil {
		if err := a.Queue.Start(ctx); err != nil {
			return err
		}
	}

	a.wg.Add(2)
	go a.MemberModule.Run(ctx, &a.wg)
	go a.RushModule.Run(ctx, &a.wg)

	errCh := make(chan error, 2)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", attr.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if a.metricsServer != nil {
		go func() {
			logger.InfoContext(ctx, "Metrics server listening", attr.String("addr", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close shuts everything down in reverse start order.
func (a *App) Close() error {
	logger := a.Observability.Provider.Logger
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if a.RushModule != nil {
		_ = a.RushModule.Close()
	}
	if a.MemberModule != nil {
		_ = a.MemberModule.Close()
	}
	a.wg.Wait()

	if a.Queue != nil {
		if err := a.Queue.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus close: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	logger.Info("Application stopped")
	return errors.Join(errs...)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := map[string]string{"database": "ok"}
	status := http.StatusOK

	if err := a.DB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if a.Queue != nil {
		checks["queue"] = "ok"
		if err := a.Queue.HealthCheck(ctx); err != nil {
			checks["queue"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	httpx.WriteJSON(w, status, checks)
}

func newSpreadsheet(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger) (sheets.Spreadsheet, error) {
	switch cfg.Driver {
	case "google":
		c, err := sheets.NewClient(ctx, cfg.CredentialsFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		return c, nil
	case "memory", "":
		logger.Warn("Using in-memory spreadsheet")
		return sheets.NewMemorySpreadsheet(), nil
	default:
		return nil, fmt.Errorf("unknown sheets driver %q", cfg.Driver)
	}
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig) (objectstore.Store, error) {
	switch cfg.Driver {
	case "gcs":
		s, err := objectstore.NewGCSStore(ctx, objectstore.GCSConfig{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
			PublicBaseURL:   cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create object store: %w", err)
		}
		return s, nil
	case "memory", "":
		return objectstore.NewMemoryStore(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newSender(cfg config.EmailConfig, logger *slog.Logger) email.Sender {
	if cfg.Driver == "sendgrid" && cfg.SendGridAPIKey != "" {
		return email.NewSendGridSender(cfg.SendGridAPIKey, mail.Address{Name: cfg.FromName, Address: cfg.FromAddress})
	}
	return email.NewConsoleSender(logger)
}

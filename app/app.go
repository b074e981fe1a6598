package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/dip-scoring/app/eventbus"
	"github.com/Black-And-White-Club/dip-scoring/app/modules/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	"github.com/Black-And-White-Club/dip-scoring/config"
	"github.com/Black-And-White-Club/dip-scoring/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultHTTPAddress = ":8080"

// App wires configuration, infrastructure and the scoring module together.
type App struct {
	Config        *config.Config
	Observability *observability.Provider
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Router        *message.Router
	Scoring       *scoring.Module

	httpServer *http.Server
	wg         sync.WaitGroup
}

// Initialize builds every component. Nothing runs until Run is called.
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.New(ctx, config.ToObsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}

	app.DB, err = bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.EventBus, err = eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		_ = app.DB.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	app.Router, err = message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = app.closeInfra()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	httpRouter := chi.NewRouter()
	httpRouter.Use(chimiddleware.RequestID, chimiddleware.Recoverer)
	httpRouter.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	httpRouter.Get("/healthz", app.handleHealth)

	app.Scoring, err = scoring.NewScoringModule(ctx, obs, app.EventBus, app.Router, httpRouter, ctx, app.DB.GetDB(), cfg, true)
	if err != nil {
		_ = app.closeInfra()
		return nil, fmt.Errorf("failed to initialize scoring module: %w", err)
	}

	addr := cfg.Observability.MetricsAddress
	if addr == "" {
		addr = defaultHTTPAddress
	}
	app.httpServer = &http.Server{
		Addr:              addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

// Run serves until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	app.wg.Add(1)
	go app.Scoring.Run(ctx, &app.wg)

	go func() {
		logger.Info("HTTP server listening", attr.String("address", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", attr.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Router.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	}
}

// Close stops every component in reverse order of construction.
func (app *App) Close() error {
	logger := app.Observability.Logger
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var errs []error
	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if app.Scoring != nil {
		if err := app.Scoring.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.wg.Wait()
	if err := app.closeInfra(); err != nil {
		errs = append(errs, err)
	}
	if err := app.Observability.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

func (app *App) closeInfra() error {
	var errs []error
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("message router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.DB.Ping(ctx); err != nil {
		app.unhealthy(w, r, "database", err)
		return
	}
	if app.Scoring != nil {
		if err := app.Scoring.HealthCheck(ctx); err != nil {
			app.unhealthy(w, r, "queue", err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (app *App) unhealthy(w http.ResponseWriter, r *http.Request, component string, err error) {
	app.Observability.Logger.WarnContext(r.Context(), "Health check failed",
		attr.String("component", component),
		attr.Error(err),
	)
	http.Error(w, component+" unavailable", http.StatusServiceUnavailable)
}

package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/dip-scoring/app/eventbus"
	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringhandlers "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/handlers"
	scoringqueue "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/queue"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	scoringrouter "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/router"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	"github.com/Black-And-White-Club/dip-scoring/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the scoring module.
type Module struct {
	ScoringService scoringservice.Service
	ScoringRouter  *scoringrouter.ScoringRouter
	Queue          scoringqueue.QueueService
	cancelFunc     context.CancelFunc
	logger         *slog.Logger
}

// NewScoringModule creates and initializes a new scoring module. The River
// queue is started only when withQueue is set; without it finished games
// store their scores inline.
func NewScoringModule(
	ctx context.Context,
	obs *observability.Provider,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
	routerCtx context.Context,
	db *bun.DB,
	cfg *config.Config,
	withQueue bool,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "scoring.NewScoringModule initializing")

	defaults, err := defaultsFromConfig(cfg.Scoring)
	if err != nil {
		return nil, err
	}

	// 1. Initialize Repository
	repo := scoringdb.NewRepository(db)

	// 2. Initialize Service
	service := scoringservice.NewScoringService(repo, logger, obs.Metrics, tracer, db)
	service.SetDefaults(defaults)

	// 3. Initialize Queue
	var queue *scoringqueue.Service
	if withQueue {
		queue, err = scoringqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, obs.Metrics, service, scoringqueue.Config{
			MaxWorkers:  cfg.Queue.MaxWorkers,
			MaxAttempts: cfg.Queue.MaxRetries,
			JobTimeout:  cfg.Queue.JobTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create scoring queue: %w", err)
		}
		if err := queue.Migrate(ctx); err != nil {
			_ = queue.Stop(ctx)
			return nil, err
		}
		service.SetScheduler(queue)
	}

	// 4. Initialize Handlers
	handlers := scoringhandlers.NewScoringHandlers(service, logger, tracer)

	// 5. Initialize Router
	scoringRouter := scoringrouter.NewScoringRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.Registry,
		obs.Metrics,
		cfg.Queue.MaxRetries,
	)

	// 6. Configure the router with handlers
	if err := scoringRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure scoring router: %w", err)
	}

	if httpRouter != nil {
		scoringhandlers.NewHTTPHandlers(service, logger).Mount(httpRouter)
	}

	m := &Module{
		ScoringService: service,
		ScoringRouter:  scoringRouter,
		logger:         logger,
	}
	if queue != nil {
		m.Queue = queue
	}
	return m, nil
}

func defaultsFromConfig(cfg config.ScoringConfig) (scoringservice.Defaults, error) {
	game, err := scoringdomain.ParseGameSystem(cfg.GameSystem)
	if err != nil {
		return scoringservice.Defaults{}, fmt.Errorf("scoring.game_system: %w", err)
	}
	round, err := scoringdomain.ParseRoundSystem(cfg.RoundSystem)
	if err != nil {
		return scoringservice.Defaults{}, fmt.Errorf("scoring.round_system: %w", err)
	}
	tournament, err := scoringdomain.ParseTournamentSystem(cfg.TournamentSystem)
	if err != nil {
		return scoringservice.Defaults{}, fmt.Errorf("scoring.tournament_system: %w", err)
	}
	return scoringservice.Defaults{
		Board: scoringdomain.BoardConfig{
			TotalCentres:  cfg.TotalCentres,
			SoloThreshold: cfg.SoloThreshold,
		},
		GameSystem:       game,
		RoundSystem:      round,
		TournamentSystem: tournament,
	}, nil
}

// Run starts the scoring module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting scoring module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start scoring queue", attr.Error(err))
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Scoring module goroutine stopped")
}

// HealthCheck reports whether the background queue can reach its database.
func (m *Module) HealthCheck(ctx context.Context) error {
	if m.Queue == nil {
		return nil
	}
	return m.Queue.HealthCheck(ctx)
}

// Close shuts down the scoring module.
func (m *Module) Close() error {
	m.logger.Info("Stopping scoring module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		if err := m.Queue.Stop(context.Background()); err != nil {
			m.logger.Error("Error stopping scoring queue", attr.Error(err))
		}
	}

	if m.ScoringRouter != nil {
		if err := m.ScoringRouter.Close(); err != nil {
			m.logger.Error("Error closing ScoringRouter from module", attr.Error(err))
			return fmt.Errorf("error closing ScoringRouter: %w", err)
		}
	}

	m.logger.Info("Scoring module stopped")
	return nil
}

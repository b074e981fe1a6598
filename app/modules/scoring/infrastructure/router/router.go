package scoringrouter

import (
	"context"
	"log/slog"
	"os"
	"time"

	scoringhandlers "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/handlers"
	scoringevents "github.com/Black-And-White-Club/dip-scoring/app/shared/events/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// ScoringRouter handles Watermill handler registration for scoring events.
type ScoringRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metrics        handlerwrapper.Metrics
	metricsBuilder *metrics.PrometheusMetricsBuilder
	maxRetries     int
}

// NewScoringRouter creates a new ScoringRouter. Router metrics are registered
// on prometheusRegistry unless it is nil or APP_ENV=test.
func NewScoringRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
	handlerMetrics handlerwrapper.Metrics,
	maxRetries int,
) *ScoringRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "dip", "scoring")
		metricsBuilder = &builder
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ScoringRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
		maxRetries:     maxRetries,
	}
}

// Configure adds middleware and registers the scoring handlers.
func (r *ScoringRouter) Configure(_ context.Context, handlers scoringhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      r.maxRetries,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// registerHandlers wires NATS subjects to handler methods.
func (r *ScoringRouter) registerHandlers(handlers scoringhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, scoringevents.GameScoreRequestedV1, handlers.HandleGameScoreRequest)
	registerHandler(deps, scoringevents.GameFinishedV1, handlers.HandleGameFinished)
	registerHandler(deps, scoringevents.CentreCountsSubmittedV1, handlers.HandleCentreCountsSubmitted)
	registerHandler(deps, scoringevents.DrawProposalSubmittedV1, handlers.HandleDrawProposalSubmitted)
	registerHandler(deps, scoringevents.TournamentStandingsRequestedV1, handlers.HandleTournamentStandingsRequest)

	r.logger.Info("Scoring module handlers registered successfully", attr.Int("handlers", len(r.Router.Handlers())))
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// Results are published to the topic carried in their metadata.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "scoring." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *ScoringRouter) Close() error {
	return r.Router.Close()
}

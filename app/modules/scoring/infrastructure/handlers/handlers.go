package scoringhandlers

import (
	"log/slog"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// ScoringHandlers implements the Handlers interface.
type ScoringHandlers struct {
	service scoringservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewScoringHandlers creates a new ScoringHandlers instance.
func NewScoringHandlers(
	service scoringservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ScoringHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// single wraps one outgoing message.
func single(topic string, payload any) []handlerwrapper.Result {
	return []handlerwrapper.Result{{Topic: topic, Payload: payload}}
}

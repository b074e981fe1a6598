package scoringservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	scoringmetrics "github.com/Black-And-White-Club/dip-scoring/app/shared/observability/metrics/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ScoringService"

// ScoringService implements the Service interface.
type ScoringService struct {
	repo      scoringdb.Repository
	logger    *slog.Logger
	metrics   scoringmetrics.ScoringMetrics
	tracer    trace.Tracer
	db        *bun.DB
	scheduler StoreScoresScheduler
	defaults  Defaults
}

// Defaults fill in what a tournament row leaves blank.
type Defaults struct {
	Board            scoringdomain.BoardConfig
	GameSystem       scoringdomain.GameSystem
	RoundSystem      scoringdomain.RoundSystem
	TournamentSystem scoringdomain.TournamentSystem
}

var _ Service = (*ScoringService)(nil)

// NewScoringService creates a new ScoringService.
func NewScoringService(
	repo scoringdb.Repository,
	logger *slog.Logger,
	metrics scoringmetrics.ScoringMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ScoringService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringService{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		defaults: Defaults{Board: scoringdomain.StandardBoard},
	}
}

// SetDefaults replaces the systems and board used for tournaments that do not
// name their own.
func (s *ScoringService) SetDefaults(d Defaults) {
	if d.Board.TotalCentres <= 0 {
		d.Board = scoringdomain.StandardBoard
	}
	s.defaults = d
}

// SetScheduler wires the queue that stores scores once a game finishes.
// Without one FinishGame stores the scores inline.
func (s *ScoringService) SetScheduler(scheduler StoreScoresScheduler) {
	s.scheduler = scheduler
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ScoringService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ScoringService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// Failure carries a business outcome back through the (value, error) API.
// Errors that are not a Failure are infrastructure faults.
type Failure struct {
	Err error
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// IsFailure reports whether err is a business outcome rather than a fault
// worth retrying.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// unwrap turns an operation result into the public (value, error) pair.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, &Failure{Err: *result.Failure}
	}
	return *result.Success, nil
}

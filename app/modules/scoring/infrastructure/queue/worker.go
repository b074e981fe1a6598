package scoringqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// ScoreStorer is the part of the scoring service the worker drives.
type ScoreStorer interface {
	StoreScores(ctx context.Context, gameID uuid.UUID) (*scoringservice.StoredScores, error)
}

// StoreScoresWorker runs StoreScoresJob.
type StoreScoresWorker struct {
	river.WorkerDefaults[StoreScoresJob]
	storer  ScoreStorer
	logger  *slog.Logger
	timeout time.Duration
}

// NewStoreScoresWorker creates a worker. A zero timeout keeps River's default.
func NewStoreScoresWorker(storer ScoreStorer, logger *slog.Logger, timeout time.Duration) *StoreScoresWorker {
	return &StoreScoresWorker{
		storer:  storer,
		logger:  logger,
		timeout: timeout,
	}
}

// Timeout bounds one attempt.
func (w *StoreScoresWorker) Timeout(*river.Job[StoreScoresJob]) time.Duration {
	return w.timeout
}

// Work stores the scores. Business failures such as a deleted game cancel
// the job; anything else is retried.
func (w *StoreScoresWorker) Work(ctx context.Context, job *river.Job[StoreScoresJob]) error {
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
		attr.UUID("game_id", job.Args.GameID),
	)
	logger.InfoContext(ctx, "Storing scores")

	stored, err := w.storer.StoreScores(ctx, job.Args.GameID)
	if err != nil {
		if scoringservice.IsFailure(err) {
			logger.WarnContext(ctx, "Cancelling store scores job", attr.Error(err))
			return river.JobCancel(err)
		}
		logger.ErrorContext(ctx, "Store scores attempt failed", attr.Error(err))
		return fmt.Errorf("store scores for game %s: %w", job.Args.GameID, err)
	}

	logger.InfoContext(ctx, "Scores stored",
		attr.Int("games", stored.Games),
		attr.Int("rounds", stored.Rounds),
		attr.Int("players", stored.Players),
	)
	return nil
}

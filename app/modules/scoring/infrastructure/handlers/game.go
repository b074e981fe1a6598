package scoringhandlers

import (
	"context"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringevents "github.com/Black-And-White-Club/dip-scoring/app/shared/events/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
)

// HandleGameScoreRequest scores a game on demand.
func (h *ScoringHandlers) HandleGameScoreRequest(ctx context.Context, payload *scoringevents.GameScoreRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoringHandlers.HandleGameScoreRequest")
	defer span.End()

	result, err := h.service.ScoreGame(ctx, payload.GameID)
	if err != nil {
		if scoringservice.IsFailure(err) {
			h.logger.WarnContext(ctx, "Game could not be scored",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("game_id", payload.GameID),
				attr.Error(err),
			)
			return single(handlerwrapper.ReplyTo(ctx, scoringevents.GameScoreFailedV1), &scoringevents.GameScoreFailedPayloadV1{
				GameID: payload.GameID,
				Reason: err.Error(),
			}), nil
		}
		return nil, err
	}

	return single(handlerwrapper.ReplyTo(ctx, scoringevents.GameScoredV1), toGameScored(result)), nil
}

// HandleGameFinished closes a game and publishes its final scores.
func (h *ScoringHandlers) HandleGameFinished(ctx context.Context, payload *scoringevents.GameFinishedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoringHandlers.HandleGameFinished")
	defer span.End()

	result, err := h.service.FinishGame(ctx, payload.GameID)
	switch {
	case err == nil:
	case result == nil && scoringservice.IsFailure(err):
		h.logger.WarnContext(ctx, "Game finish rejected",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("game_id", payload.GameID),
			attr.Error(err),
		)
		return single(scoringevents.GameFinishFailedV1, &scoringevents.GameScoreFailedPayloadV1{
			GameID: payload.GameID,
			Reason: err.Error(),
		}), nil
	case result == nil:
		return nil, err
	default:
		// Finished and scored; only storing the scores failed.
		h.logger.ErrorContext(ctx, "Final scores not stored",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("game_id", payload.GameID),
			attr.Error(err),
		)
	}

	h.logger.InfoContext(ctx, "Game finished",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("game_id", payload.GameID),
		attr.String("outcome", string(result.Outcome)),
	)
	return single(scoringevents.GameScoredV1, toGameScored(result)), nil
}

func toGameScored(r *scoringservice.GameScoreResult) *scoringevents.GameScoredPayloadV1 {
	scores := make(map[string]float64, len(r.Scores))
	for p, s := range r.Scores {
		scores[p.String()] = s
	}
	return &scoringevents.GameScoredPayloadV1{
		GameID:  r.GameID,
		Name:    r.Name,
		System:  string(r.System),
		Outcome: string(r.Outcome),
		Summary: r.Summary,
		Scores:  scores,
	}
}

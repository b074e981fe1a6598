package scoringhandlers

import (
	"context"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringevents "github.com/Black-And-White-Club/dip-scoring/app/shared/events/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
)

// HandleTournamentStandingsRequest publishes the current standings, to the
// reply_to topic when the request carries one.
func (h *ScoringHandlers) HandleTournamentStandingsRequest(ctx context.Context, payload *scoringevents.TournamentStandingsRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoringHandlers.HandleTournamentStandingsRequest")
	defer span.End()

	result, err := h.service.ScoreTournament(ctx, payload.TournamentID)
	if err != nil {
		if scoringservice.IsFailure(err) {
			h.logger.WarnContext(ctx, "Standings unavailable",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("tournament_id", payload.TournamentID),
				attr.Error(err),
			)
			return single(handlerwrapper.ReplyTo(ctx, scoringevents.TournamentStandingsFailedV1), &scoringevents.TournamentStandingsFailedPayloadV1{
				TournamentID: payload.TournamentID,
				Reason:       err.Error(),
			}), nil
		}
		return nil, err
	}

	standings := make([]scoringevents.StandingV1, 0, len(result.Standings))
	for _, s := range result.Standings {
		standings = append(standings, scoringevents.StandingV1{
			PlayerID: s.PlayerID,
			Name:     s.Name,
			Rank:     s.Rank,
			Score:    s.Score,
			Rounds:   s.Rounds,
		})
	}

	return single(handlerwrapper.ReplyTo(ctx, scoringevents.TournamentStandingsV1), &scoringevents.TournamentStandingsPayloadV1{
		TournamentID: result.TournamentID,
		System:       string(result.System),
		Standings:    standings,
	}), nil
}

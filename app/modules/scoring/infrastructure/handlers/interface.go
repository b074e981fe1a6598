package scoringhandlers

import (
	"context"

	scoringevents "github.com/Black-And-White-Club/dip-scoring/app/shared/events/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/handlerwrapper"
)

// Handlers defines the interface for scoring event handlers.
type Handlers interface {
	// HandleGameScoreRequest scores a game on demand.
	HandleGameScoreRequest(ctx context.Context, payload *scoringevents.GameScoreRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleGameFinished closes a game and publishes its final scores.
	HandleGameFinished(ctx context.Context, payload *scoringevents.GameFinishedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleCentreCountsSubmitted records one year of centre counts.
	HandleCentreCountsSubmitted(ctx context.Context, payload *scoringevents.CentreCountsSubmittedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleDrawProposalSubmitted records a draw vote.
	HandleDrawProposalSubmitted(ctx context.Context, payload *scoringevents.DrawProposalSubmittedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleTournamentStandingsRequest publishes the current standings.
	HandleTournamentStandingsRequest(ctx context.Context, payload *scoringevents.TournamentStandingsRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

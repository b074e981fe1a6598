package scoringhandlers

import (
	"context"
	"errors"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringevents "github.com/Black-And-White-Club/dip-scoring/app/shared/events/scoring"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
)

// HandleCentreCountsSubmitted records one year of centre counts.
func (h *ScoringHandlers) HandleCentreCountsSubmitted(ctx context.Context, payload *scoringevents.CentreCountsSubmittedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoringHandlers.HandleCentreCountsSubmitted")
	defer span.End()

	reject := func(err error) []handlerwrapper.Result {
		h.logger.WarnContext(ctx, "Centre counts rejected",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("game_id", payload.GameID),
			attr.Int("year", payload.Year),
			attr.Error(err),
		)
		return single(scoringevents.CentreCountsRejectedV1, &scoringevents.CentreCountsRejectedPayloadV1{
			GameID: payload.GameID,
			Year:   payload.Year,
			Reason: err.Error(),
		})
	}

	counts := make([]scoringdomain.CentreCount, 0, len(payload.Counts))
	var errs []error
	for name, c := range payload.Counts {
		p, err := scoringdomain.ParsePower(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		counts = append(counts, scoringdomain.CentreCount{Power: p, Year: payload.Year, Count: c})
	}
	if len(errs) > 0 {
		return reject(errors.Join(errs...)), nil
	}

	if err := h.service.RecordCentreCounts(ctx, payload.GameID, counts); err != nil {
		if scoringservice.IsFailure(err) {
			return reject(err), nil
		}
		return nil, err
	}

	return single(scoringevents.CentreCountsRecordedV1, &scoringevents.CentreCountsRecordedPayloadV1{
		GameID: payload.GameID,
		Year:   payload.Year,
	}), nil
}

// HandleDrawProposalSubmitted records a draw vote.
func (h *ScoringHandlers) HandleDrawProposalSubmitted(ctx context.Context, payload *scoringevents.DrawProposalSubmittedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoringHandlers.HandleDrawProposalSubmitted")
	defer span.End()

	reject := func(err error) []handlerwrapper.Result {
		h.logger.WarnContext(ctx, "Draw proposal rejected",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("game_id", payload.GameID),
			attr.Error(err),
		)
		return single(scoringevents.DrawProposalRejectedV1, &scoringevents.DrawProposalRejectedPayloadV1{
			GameID: payload.GameID,
			Reason: err.Error(),
		})
	}

	proposal, err := toDrawProposal(payload)
	if err != nil {
		return reject(err), nil
	}

	if err := h.service.RecordDrawProposal(ctx, payload.GameID, proposal); err != nil {
		if scoringservice.IsFailure(err) {
			return reject(err), nil
		}
		return nil, err
	}

	return single(scoringevents.DrawProposalRecordedV1, &scoringevents.DrawProposalRecordedPayloadV1{
		GameID: payload.GameID,
		Year:   proposal.Year,
		Season: string(proposal.Season),
		Status: string(proposal.Status),
	}), nil
}

func toDrawProposal(p *scoringevents.DrawProposalSubmittedPayloadV1) (scoringdomain.DrawProposal, error) {
	season, err := scoringdomain.ParseSeason(p.Season)
	if err != nil {
		return scoringdomain.DrawProposal{}, err
	}
	status, err := scoringdomain.ParseDrawStatus(p.Status)
	if err != nil {
		return scoringdomain.DrawProposal{}, err
	}
	powers := make([]scoringdomain.GreatPower, 0, len(p.Powers))
	for _, name := range p.Powers {
		power, err := scoringdomain.ParsePower(name)
		if err != nil {
			return scoringdomain.DrawProposal{}, err
		}
		powers = append(powers, power)
	}
	return scoringdomain.DrawProposal{
		Year:          p.Year,
		Season:        season,
		Powers:        powers,
		Status:        status,
		VotesInFavour: p.VotesInFavour,
		VotesAgainst:  p.VotesAgainst,
	}, nil
}

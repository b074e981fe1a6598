package scoringhandlers

import (
	"context"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Scoring Service
// ------------------------

type FakeScoringService struct {
	trace []string

	ScoreGameFunc          func(ctx context.Context, gameID uuid.UUID) (*scoringservice.GameScoreResult, error)
	ScoreRoundFunc         func(ctx context.Context, roundID uuid.UUID) (*scoringservice.RoundScoreResult, error)
	ScoreTournamentFunc    func(ctx context.Context, tournamentID uuid.UUID) (*scoringservice.TournamentScoreResult, error)
	StandingsFunc          func(ctx context.Context, tournamentID uuid.UUID) ([]scoringservice.Standing, error)
	BestCountriesFunc      func(ctx context.Context, tournamentID uuid.UUID, byCentres bool) (map[scoringdomain.GreatPower][]scoringdomain.GameResult, error)
	RecordCentreCountsFunc func(ctx context.Context, gameID uuid.UUID, counts []scoringdomain.CentreCount) error
	RecordDrawProposalFunc func(ctx context.Context, gameID uuid.UUID, proposal scoringdomain.DrawProposal) error
	FinishGameFunc         func(ctx context.Context, gameID uuid.UUID) (*scoringservice.GameScoreResult, error)
	StoreScoresFunc        func(ctx context.Context, gameID uuid.UUID) (*scoringservice.StoredScores, error)
	ExportStandingsFunc    func(ctx context.Context, tournamentID uuid.UUID) ([]byte, error)
	CentreCountChartFunc   func(ctx context.Context, gameID uuid.UUID) ([]byte, error)
}

func NewFakeScoringService() *FakeScoringService {
	return &FakeScoringService{
		trace: []string{},
	}
}

func (f *FakeScoringService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeScoringService) ScoreGame(ctx context.Context, gameID uuid.UUID) (*scoringservice.GameScoreResult, error) {
	f.record("ScoreGame")
	if f.ScoreGameFunc != nil {
		return f.ScoreGameFunc(ctx, gameID)
	}
	return &scoringservice.GameScoreResult{GameID: gameID}, nil
}

func (f *FakeScoringService) ScoreRound(ctx context.Context, roundID uuid.UUID) (*scoringservice.RoundScoreResult, error) {
	f.record("ScoreRound")
	if f.ScoreRoundFunc != nil {
		return f.ScoreRoundFunc(ctx, roundID)
	}
	return &scoringservice.RoundScoreResult{RoundID: roundID}, nil
}

func (f *FakeScoringService) ScoreTournament(ctx context.Context, tournamentID uuid.UUID) (*scoringservice.TournamentScoreResult, error) {
	f.record("ScoreTournament")
	if f.ScoreTournamentFunc != nil {
		return f.ScoreTournamentFunc(ctx, tournamentID)
	}
	return &scoringservice.TournamentScoreResult{TournamentID: tournamentID}, nil
}

func (f *FakeScoringService) Standings(ctx context.Context, tournamentID uuid.UUID) ([]scoringservice.Standing, error) {
	f.record("Standings")
	if f.StandingsFunc != nil {
		return f.StandingsFunc(ctx, tournamentID)
	}
	return nil, nil
}

func (f *FakeScoringService) BestCountries(ctx context.Context, tournamentID uuid.UUID, byCentres bool) (map[scoringdomain.GreatPower][]scoringdomain.GameResult, error) {
	f.record("BestCountries")
	if f.BestCountriesFunc != nil {
		return f.BestCountriesFunc(ctx, tournamentID, byCentres)
	}
	return nil, nil
}

func (f *FakeScoringService) RecordCentreCounts(ctx context.Context, gameID uuid.UUID, counts []scoringdomain.CentreCount) error {
	f.record("RecordCentreCounts")
	if f.RecordCentreCountsFunc != nil {
		return f.RecordCentreCountsFunc(ctx, gameID, counts)
	}
	return nil
}

func (f *FakeScoringService) RecordDrawProposal(ctx context.Context, gameID uuid.UUID, proposal scoringdomain.DrawProposal) error {
	f.record("RecordDrawProposal")
	if f.RecordDrawProposalFunc != nil {
		return f.RecordDrawProposalFunc(ctx, gameID, proposal)
	}
	return nil
}

func (f *FakeScoringService) FinishGame(ctx context.Context, gameID uuid.UUID) (*scoringservice.GameScoreResult, error) {
	f.record("FinishGame")
	if f.FinishGameFunc != nil {
		return f.FinishGameFunc(ctx, gameID)
	}
	return &scoringservice.GameScoreResult{GameID: gameID}, nil
}

func (f *FakeScoringService) StoreScores(ctx context.Context, gameID uuid.UUID) (*scoringservice.StoredScores, error) {
	f.record("StoreScores")
	if f.StoreScoresFunc != nil {
		return f.StoreScoresFunc(ctx, gameID)
	}
	return &scoringservice.StoredScores{GameID: gameID}, nil
}

func (f *FakeScoringService) ExportStandings(ctx context.Context, tournamentID uuid.UUID) ([]byte, error) {
	f.record("ExportStandings")
	if f.ExportStandingsFunc != nil {
		return f.ExportStandingsFunc(ctx, tournamentID)
	}
	return nil, nil
}

func (f *FakeScoringService) CentreCountChart(ctx context.Context, gameID uuid.UUID) ([]byte, error) {
	f.record("CentreCountChart")
	if f.CentreCountChartFunc != nil {
		return f.CentreCountChartFunc(ctx, gameID)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeScoringService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ scoringservice.Service = (*FakeScoringService)(nil)

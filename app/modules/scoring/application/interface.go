package scoringservice

import (
	"context"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// Service defines the contract for scoring operations.
type Service interface {
	// ScoreGame scores one game under its tournament's game system.
	ScoreGame(ctx context.Context, gameID uuid.UUID) (*GameScoreResult, error)
	// ScoreRound scores one round, counting sitter bonuses given in earlier rounds.
	ScoreRound(ctx context.Context, roundID uuid.UUID) (*RoundScoreResult, error)
	// ScoreTournament totals every player's rounds and ranks them.
	ScoreTournament(ctx context.Context, tournamentID uuid.UUID) (*TournamentScoreResult, error)
	// Standings returns the ranked players of a tournament.
	Standings(ctx context.Context, tournamentID uuid.UUID) ([]Standing, error)
	// BestCountries orders each power's game results across a tournament.
	BestCountries(ctx context.Context, tournamentID uuid.UUID, byCentres bool) (map[scoringdomain.GreatPower][]scoringdomain.GameResult, error)

	// RecordCentreCounts stores a game's counts after checking the game stays consistent.
	RecordCentreCounts(ctx context.Context, gameID uuid.UUID, counts []scoringdomain.CentreCount) error
	// RecordDrawProposal stores a draw vote.
	RecordDrawProposal(ctx context.Context, gameID uuid.UUID, proposal scoringdomain.DrawProposal) error
	// FinishGame marks a game over and schedules its scores to be stored.
	FinishGame(ctx context.Context, gameID uuid.UUID) (*GameScoreResult, error)
	// StoreScores persists game, round and tournament scores affected by a game.
	StoreScores(ctx context.Context, gameID uuid.UUID) (*StoredScores, error)

	// ExportStandings renders the standings as an xlsx workbook.
	ExportStandings(ctx context.Context, tournamentID uuid.UUID) ([]byte, error)
	// CentreCountChart renders a game's centre counts by year as a PNG.
	CentreCountChart(ctx context.Context, gameID uuid.UUID) ([]byte, error)
}

// StoreScoresScheduler queues a background store of a game's scores.
type StoreScoresScheduler interface {
	ScheduleStoreScores(ctx context.Context, gameID uuid.UUID) error
}

package scoringdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for scoring persistence.
// A nil db runs the call on the repository's own connection.
//
// Error semantics:
//   - ErrNotFound: record does not exist
//   - ErrNoRowsAffected: UPDATE matched no rows
//   - Other errors: infrastructure failures
type Repository interface {
	GetTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*Tournament, error)
	UpsertTournament(ctx context.Context, db bun.IDB, t *Tournament) error

	GetRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error)
	// ListRounds returns a tournament's rounds ordered by number.
	ListRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Round, error)
	UpsertRound(ctx context.Context, db bun.IDB, r *Round) error

	GetGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*Game, error)
	ListGames(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]Game, error)
	UpsertGame(ctx context.Context, db bun.IDB, g *Game) error
	// MarkGameFinished flags a game as over. Returns ErrNoRowsAffected for unknown games.
	MarkGameFinished(ctx context.Context, db bun.IDB, gameID uuid.UUID) error

	ListPlayers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Player, error)
	UpsertPlayer(ctx context.Context, db bun.IDB, p *Player) error

	ListRoundPlayers(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]RoundPlayer, error)
	UpsertRoundPlayer(ctx context.Context, db bun.IDB, rp *RoundPlayer) error

	ListGamePlayers(ctx context.Context, db bun.IDB, gameIDs []uuid.UUID) ([]GamePlayer, error)
	UpsertGamePlayer(ctx context.Context, db bun.IDB, gp *GamePlayer) error

	ListCentreCounts(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]CentreCount, error)
	// UpsertCentreCounts records counts, replacing any already stored for the same power and year.
	UpsertCentreCounts(ctx context.Context, db bun.IDB, counts []CentreCount) error

	ListDrawProposals(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]DrawProposal, error)
	InsertDrawProposal(ctx context.Context, db bun.IDB, d *DrawProposal) error

	// SaveGameScores stores a score on each game player keyed by power.
	SaveGameScores(ctx context.Context, db bun.IDB, gameID uuid.UUID, scores map[string]float64) error
	// SaveRoundScores stores a score on each round player.
	SaveRoundScores(ctx context.Context, db bun.IDB, roundID uuid.UUID, scores map[uuid.UUID]float64) error
	// SaveTournamentScores stores each player's tournament total.
	SaveTournamentScores(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, scores map[uuid.UUID]float64) error
}

package scoringdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new scoring repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// GetTournament retrieves a tournament by its UUID.
func (r *Impl) GetTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*Tournament, error) {
	t := new(Tournament)
	err := r.resolveDB(db).NewSelect().
		Model(t).
		Where("uuid = ?", tournamentID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "tournament")
	}
	return t, nil
}

// UpsertTournament creates or updates a tournament.
func (r *Impl) UpsertTournament(ctx context.Context, db bun.IDB, t *Tournament) error {
	t.UpdatedAt = time.Now()
	_, err := r.resolveDB(db).NewInsert().
		Model(t).
		On("CONFLICT (uuid) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("game_system = EXCLUDED.game_system").
		Set("round_system = EXCLUDED.round_system").
		Set("tournament_system = EXCLUDED.tournament_system").
		Set("total_centres = EXCLUDED.total_centres").
		Set("solo_threshold = EXCLUDED.solo_threshold").
		Set("dias = EXCLUDED.dias").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("uuid").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert tournament: %w", err)
	}
	return nil
}

// GetRound retrieves a round by its UUID.
func (r *Impl) GetRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error) {
	round := new(Round)
	err := r.resolveDB(db).NewSelect().
		Model(round).
		Where("uuid = ?", roundID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "round")
	}
	return round, nil
}

// ListRounds returns a tournament's rounds ordered by number.
func (r *Impl) ListRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Round, error) {
	var rounds []Round
	err := r.resolveDB(db).NewSelect().
		Model(&rounds).
		Where("tournament_uuid = ?", tournamentID).
		Order("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// UpsertRound creates or renumbers a round.
func (r *Impl) UpsertRound(ctx context.Context, db bun.IDB, round *Round) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(round).
		On("CONFLICT (uuid) DO UPDATE").
		Set("number = EXCLUDED.number").
		Returning("uuid").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert round: %w", err)
	}
	return nil
}

// GetGame retrieves a game by its UUID.
func (r *Impl) GetGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*Game, error) {
	g := new(Game)
	err := r.resolveDB(db).NewSelect().
		Model(g).
		Where("uuid = ?", gameID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "game")
	}
	return g, nil
}

// ListGames returns the games of the given rounds ordered by name.
func (r *Impl) ListGames(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]Game, error) {
	var games []Game
	if len(roundIDs) == 0 {
		return games, nil
	}
	err := r.resolveDB(db).NewSelect().
		Model(&games).
		Where("round_uuid IN (?)", bun.In(roundIDs)).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// UpsertGame creates or updates a game.
func (r *Impl) UpsertGame(ctx context.Context, db bun.IDB, g *Game) error {
	g.UpdatedAt = time.Now()
	_, err := r.resolveDB(db).NewInsert().
		Model(g).
		On("CONFLICT (uuid) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("finished = EXCLUDED.finished").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("uuid").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

// MarkGameFinished flags a game as over.
func (r *Impl) MarkGameFinished(ctx context.Context, db bun.IDB, gameID uuid.UUID) error {
	result, err := r.resolveDB(db).NewUpdate().
		Model((*Game)(nil)).
		Set("finished = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("uuid = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark game finished: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// ListPlayers returns a tournament's players ordered by name.
func (r *Impl) ListPlayers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Player, error) {
	var players []Player
	err := r.resolveDB(db).NewSelect().
		Model(&players).
		Where("tournament_uuid = ?", tournamentID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// UpsertPlayer creates or updates a player.
func (r *Impl) UpsertPlayer(ctx context.Context, db bun.IDB, p *Player) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(p).
		On("CONFLICT (uuid) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("unranked = EXCLUDED.unranked").
		Returning("uuid").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

// ListRoundPlayers returns the entries of the given rounds.
func (r *Impl) ListRoundPlayers(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]RoundPlayer, error) {
	var entries []RoundPlayer
	if len(roundIDs) == 0 {
		return entries, nil
	}
	err := r.resolveDB(db).NewSelect().
		Model(&entries).
		Where("round_uuid IN (?)", bun.In(roundIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list round players: %w", err)
	}
	return entries, nil
}

// UpsertRoundPlayer enters a player into a round.
func (r *Impl) UpsertRoundPlayer(ctx context.Context, db bun.IDB, rp *RoundPlayer) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(rp).
		On("CONFLICT (round_uuid, player_uuid) DO UPDATE").
		Set("sat_out = EXCLUDED.sat_out").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert round player: %w", err)
	}
	return nil
}

// ListGamePlayers returns the power assignments of the given games.
func (r *Impl) ListGamePlayers(ctx context.Context, db bun.IDB, gameIDs []uuid.UUID) ([]GamePlayer, error) {
	var players []GamePlayer
	if len(gameIDs) == 0 {
		return players, nil
	}
	err := r.resolveDB(db).NewSelect().
		Model(&players).
		Where("game_uuid IN (?)", bun.In(gameIDs)).
		Order("game_uuid ASC", "power ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list game players: %w", err)
	}
	return players, nil
}

// UpsertGamePlayer assigns a player to a power.
func (r *Impl) UpsertGamePlayer(ctx context.Context, db bun.IDB, gp *GamePlayer) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(gp).
		On("CONFLICT (game_uuid, power) DO UPDATE").
		Set("player_uuid = EXCLUDED.player_uuid").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert game player: %w", err)
	}
	return nil
}

// ListCentreCounts returns a game's counts ordered by year.
func (r *Impl) ListCentreCounts(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]CentreCount, error) {
	var counts []CentreCount
	err := r.resolveDB(db).NewSelect().
		Model(&counts).
		Where("game_uuid = ?", gameID).
		Order("year ASC", "power ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centre counts: %w", err)
	}
	return counts, nil
}

// UpsertCentreCounts records counts, replacing any stored for the same power and year.
func (r *Impl) UpsertCentreCounts(ctx context.Context, db bun.IDB, counts []CentreCount) error {
	if len(counts) == 0 {
		return nil
	}
	_, err := r.resolveDB(db).NewInsert().
		Model(&counts).
		On("CONFLICT (game_uuid, power, year) DO UPDATE").
		Set("count = EXCLUDED.count").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert centre counts: %w", err)
	}
	return nil
}

// ListDrawProposals returns a game's draw votes in the order they were recorded.
func (r *Impl) ListDrawProposals(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]DrawProposal, error) {
	var proposals []DrawProposal
	err := r.resolveDB(db).NewSelect().
		Model(&proposals).
		Where("game_uuid = ?", gameID).
		Order("year ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw proposals: %w", err)
	}
	return proposals, nil
}

// InsertDrawProposal records a draw vote.
func (r *Impl) InsertDrawProposal(ctx context.Context, db bun.IDB, d *DrawProposal) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(d).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert draw proposal: %w", err)
	}
	return nil
}

// SaveGameScores stores a score on each game player keyed by power.
func (r *Impl) SaveGameScores(ctx context.Context, db bun.IDB, gameID uuid.UUID, scores map[string]float64) error {
	db = r.resolveDB(db)
	for power, score := range scores {
		if _, err := db.NewUpdate().
			Model((*GamePlayer)(nil)).
			Set("score = ?", score).
			Where("game_uuid = ?", gameID).
			Where("power = ?", power).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to save score for %s: %w", power, err)
		}
	}
	return nil
}

// SaveRoundScores stores a score on each round player.
func (r *Impl) SaveRoundScores(ctx context.Context, db bun.IDB, roundID uuid.UUID, scores map[uuid.UUID]float64) error {
	db = r.resolveDB(db)
	for playerID, score := range scores {
		if _, err := db.NewUpdate().
			Model((*RoundPlayer)(nil)).
			Set("score = ?", score).
			Where("round_uuid = ?", roundID).
			Where("player_uuid = ?", playerID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to save round score for %s: %w", playerID, err)
		}
	}
	return nil
}

// SaveTournamentScores stores each player's tournament total.
func (r *Impl) SaveTournamentScores(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, scores map[uuid.UUID]float64) error {
	db = r.resolveDB(db)
	for playerID, score := range scores {
		if _, err := db.NewUpdate().
			Model((*Player)(nil)).
			Set("score = ?", score).
			Where("tournament_uuid = ?", tournamentID).
			Where("uuid = ?", playerID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to save tournament score for %s: %w", playerID, err)
		}
	}
	return nil
}

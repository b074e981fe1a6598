package scoringservice

import (
	"context"
	"fmt"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ScoreGame scores one game under its tournament's game system.
func (s *ScoringService) ScoreGame(ctx context.Context, gameID uuid.UUID) (*GameScoreResult, error) {
	scoreGameTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameScoreResult, error], error) {
		return s.scoreGameLogic(ctx, db, gameID)
	}

	return unwrap(withTelemetry(s, ctx, "ScoreGame", gameID.String(), func(ctx context.Context) (results.OperationResult[*GameScoreResult, error], error) {
		return runInTx(s, ctx, scoreGameTx)
	}))
}

func (s *ScoringService) scoreGameLogic(ctx context.Context, db bun.IDB, gameID uuid.UUID) (results.OperationResult[*GameScoreResult, error], error) {
	game, err := s.repo.GetGame(ctx, db, gameID)
	if err != nil {
		return fail[*GameScoreResult](err)
	}
	round, err := s.repo.GetRound(ctx, db, game.RoundUUID)
	if err != nil {
		return fail[*GameScoreResult](err)
	}
	t, err := s.repo.GetTournament(ctx, db, round.TournamentUUID)
	if err != nil {
		return fail[*GameScoreResult](err)
	}
	sys, err := s.systemsOf(t)
	if err != nil {
		return fail[*GameScoreResult](err)
	}
	system := sys.game
	assigned, err := s.repo.ListGamePlayers(ctx, db, []uuid.UUID{gameID})
	if err != nil {
		return fail[*GameScoreResult](err)
	}

	sg, err := s.scoreGame(ctx, db, t, system, *game, assigned)
	if err != nil {
		return fail[*GameScoreResult](err)
	}
	return results.SuccessResult[*GameScoreResult, error](sg.result(system)), nil
}

// ScoreRound scores one round, counting sitter bonuses given in earlier rounds.
func (s *ScoringService) ScoreRound(ctx context.Context, roundID uuid.UUID) (*RoundScoreResult, error) {
	scoreRoundTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundScoreResult, error], error) {
		return s.scoreRoundLogic(ctx, db, roundID)
	}

	return unwrap(withTelemetry(s, ctx, "ScoreRound", roundID.String(), func(ctx context.Context) (results.OperationResult[*RoundScoreResult, error], error) {
		return runInTx(s, ctx, scoreRoundTx)
	}))
}

func (s *ScoringService) scoreRoundLogic(ctx context.Context, db bun.IDB, roundID uuid.UUID) (results.OperationResult[*RoundScoreResult, error], error) {
	round, err := s.repo.GetRound(ctx, db, roundID)
	if err != nil {
		return fail[*RoundScoreResult](err)
	}
	view, err := s.loadTournament(ctx, db, round.TournamentUUID)
	if err != nil {
		return fail[*RoundScoreResult](err)
	}
	scored, ok := view.round(roundID)
	if !ok {
		return fail[*RoundScoreResult](fmt.Errorf("round %s: %w", roundID, scoringdb.ErrNotFound))
	}
	out, err := scored.result(view.systems.round)
	if err != nil {
		return fail[*RoundScoreResult](err)
	}
	return results.SuccessResult[*RoundScoreResult, error](out), nil
}

// ScoreTournament totals every player's rounds and ranks them.
func (s *ScoringService) ScoreTournament(ctx context.Context, tournamentID uuid.UUID) (*TournamentScoreResult, error) {
	scoreTournamentTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*TournamentScoreResult, error], error) {
		return s.scoreTournamentLogic(ctx, db, tournamentID)
	}

	return unwrap(withTelemetry(s, ctx, "ScoreTournament", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*TournamentScoreResult, error], error) {
		return runInTx(s, ctx, scoreTournamentTx)
	}))
}

func (s *ScoringService) scoreTournamentLogic(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (results.OperationResult[*TournamentScoreResult, error], error) {
	view, err := s.loadTournament(ctx, db, tournamentID)
	if err != nil {
		return fail[*TournamentScoreResult](err)
	}
	out, err := s.tournamentResult(ctx, view)
	if err != nil {
		return fail[*TournamentScoreResult](err)
	}
	return results.SuccessResult[*TournamentScoreResult, error](out), nil
}

func (s *ScoringService) tournamentResult(ctx context.Context, view *tournamentView) (*TournamentScoreResult, error) {
	rounds := view.roundScores()
	totals, err := view.systems.tournament.Score(rounds)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordScoreComputed(ctx, string(scoringdomain.KindTournament), string(view.systems.tournament))
	}

	names := make(map[scoringdomain.PlayerID]string, len(view.players))
	unranked := make(map[scoringdomain.PlayerID]bool)
	for _, p := range view.players {
		names[playerID(p.UUID)] = p.Name
		if p.Unranked {
			unranked[playerID(p.UUID)] = true
		}
	}

	out := &TournamentScoreResult{
		TournamentID: view.tournament.UUID,
		System:       view.systems.tournament,
		Scores:       make(map[uuid.UUID]float64, len(totals)),
	}
	for _, st := range scoringdomain.Rank(totals, unranked) {
		id, err := parsePlayerID(st.Player)
		if err != nil {
			return nil, fmt.Errorf("bad player id %q: %w", st.Player, err)
		}
		out.Scores[id] = st.Score

		perRound := make([]*float64, 0, len(rounds[st.Player]))
		for _, rs := range rounds[st.Player] {
			if !rs.Played {
				perRound = append(perRound, nil)
				continue
			}
			score := rs.Score
			perRound = append(perRound, &score)
		}
		out.Standings = append(out.Standings, Standing{
			PlayerID: id,
			Name:     names[st.Player],
			Rank:     st.Rank,
			Score:    st.Score,
			Rounds:   perRound,
		})
	}
	return out, nil
}

// Standings returns the ranked players of a tournament.
func (s *ScoringService) Standings(ctx context.Context, tournamentID uuid.UUID) ([]Standing, error) {
	standingsTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]Standing, error], error) {
		scored, err := s.scoreTournamentLogic(ctx, db, tournamentID)
		if err != nil || scored.IsFailure() {
			return results.OperationResult[[]Standing, error]{Failure: scored.Failure}, err
		}
		return results.SuccessResult[[]Standing, error]((*scored.Success).Standings), nil
	}

	return unwrap(withTelemetry(s, ctx, "Standings", tournamentID.String(), func(ctx context.Context) (results.OperationResult[[]Standing, error], error) {
		return runInTx(s, ctx, standingsTx)
	}))
}

// BestCountries orders each power's game results across a tournament.
func (s *ScoringService) BestCountries(ctx context.Context, tournamentID uuid.UUID, byCentres bool) (map[scoringdomain.GreatPower][]scoringdomain.GameResult, error) {
	type best = map[scoringdomain.GreatPower][]scoringdomain.GameResult

	bestTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[best, error], error) {
		view, err := s.loadTournament(ctx, db, tournamentID)
		if err != nil {
			return fail[best](err)
		}
		var played []scoringdomain.GameResult
		for _, r := range view.rounds {
			for _, g := range view.games[r.round.UUID] {
				counts := map[scoringdomain.GreatPower]int{}
				if year, ok := g.history.FinalYear(); ok {
					if counts, err = g.history.CentreCounts(year); err != nil {
						return fail[best](err)
					}
				}
				for power, id := range g.players {
					played = append(played, scoringdomain.GameResult{
						Game:    g.game.Name,
						Player:  playerID(id),
						Power:   power,
						Score:   g.scores[power],
						Centres: counts[power],
					})
				}
			}
		}
		return results.SuccessResult[best, error](scoringdomain.BestCountries(played, byCentres)), nil
	}

	return unwrap(withTelemetry(s, ctx, "BestCountries", tournamentID.String(), func(ctx context.Context) (results.OperationResult[best, error], error) {
		return runInTx(s, ctx, bestTx)
	}))
}

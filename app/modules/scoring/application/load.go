package scoringservice

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// isDomainFailure reports whether err is a business outcome rather than an
// infrastructure fault.
func isDomainFailure(err error) bool {
	return errors.Is(err, scoringdb.ErrNotFound) ||
		errors.Is(err, scoringdomain.ErrUnknownScoringSystem) ||
		errors.Is(err, scoringdomain.ErrNoCentreCountData) ||
		errors.Is(err, scoringdomain.ErrInvalidYear) ||
		errors.Is(err, scoringdomain.ErrUnknownPower) ||
		errors.Is(err, scoringdomain.ErrInvalidDrawProposal)
}

// fail sorts err into a failure result or an infrastructure error.
func fail[S any](err error) (results.OperationResult[S, error], error) {
	if isDomainFailure(err) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}

func playerID(id uuid.UUID) scoringdomain.PlayerID {
	return scoringdomain.PlayerID(id.String())
}

func parsePlayerID(p scoringdomain.PlayerID) (uuid.UUID, error) {
	return uuid.Parse(string(p))
}

type systems struct {
	game       scoringdomain.GameSystem
	round      scoringdomain.RoundSystem
	tournament scoringdomain.TournamentSystem
}

func (s *ScoringService) systemsOf(t *scoringdb.Tournament) (systems, error) {
	var (
		sys systems
		err error
	)
	if sys.game, err = scoringdomain.ParseGameSystem(cmp.Or(t.GameSystem, string(s.defaults.GameSystem))); err != nil {
		return sys, err
	}
	if sys.round, err = scoringdomain.ParseRoundSystem(cmp.Or(t.RoundSystem, string(s.defaults.RoundSystem))); err != nil {
		return sys, err
	}
	if sys.tournament, err = scoringdomain.ParseTournamentSystem(cmp.Or(t.TournamentSystem, string(s.defaults.TournamentSystem))); err != nil {
		return sys, err
	}
	return sys, nil
}

// boardOf is the tournament's board with unset sizes taken from the defaults.
func (s *ScoringService) boardOf(t *scoringdb.Tournament) scoringdomain.BoardConfig {
	b := t.Board()
	if b.TotalCentres <= 0 {
		b.TotalCentres = s.defaults.Board.TotalCentres
		if b.SoloThreshold <= 0 {
			b.SoloThreshold = s.defaults.Board.SoloThreshold
		}
	}
	return b
}

type scoredGame struct {
	game    scoringdb.Game
	history *scoringdomain.GameHistory
	players map[scoringdomain.GreatPower]uuid.UUID
	scores  scoringdomain.GameScores
}

func (g scoredGame) result(system scoringdomain.GameSystem) *GameScoreResult {
	return &GameScoreResult{
		GameID:  g.game.UUID,
		Name:    g.game.Name,
		System:  system,
		Outcome: g.history.Outcome(),
		Summary: g.history.ResultSummary(),
		Scores:  g.scores,
		Players: g.players,
	}
}

// loadHistory reads a game's counts and draw votes.
func (s *ScoringService) loadHistory(ctx context.Context, db bun.IDB, board scoringdomain.BoardConfig, g *scoringdb.Game) (*scoringdomain.GameHistory, error) {
	counts, err := s.repo.ListCentreCounts(ctx, db, g.UUID)
	if err != nil {
		return nil, err
	}
	proposals, err := s.repo.ListDrawProposals(ctx, db, g.UUID)
	if err != nil {
		return nil, err
	}
	snapshot, err := scoringdb.ToSnapshot(board, g, counts, proposals)
	if err != nil {
		return nil, err
	}
	return scoringdomain.NewGameHistory(snapshot), nil
}

func (s *ScoringService) scoreGame(ctx context.Context, db bun.IDB, t *scoringdb.Tournament, system scoringdomain.GameSystem, g scoringdb.Game, assigned []scoringdb.GamePlayer) (scoredGame, error) {
	h, err := s.loadHistory(ctx, db, s.boardOf(t), &g)
	if err != nil {
		return scoredGame{}, err
	}
	scores, err := system.Score(h)
	if err != nil {
		return scoredGame{}, err
	}
	players := make(map[scoringdomain.GreatPower]uuid.UUID, len(assigned))
	for _, gp := range assigned {
		p, err := scoringdomain.ParsePower(gp.Power)
		if err != nil {
			return scoredGame{}, fmt.Errorf("game %s: %w", g.UUID, err)
		}
		players[p] = gp.PlayerUUID
	}
	if s.metrics != nil {
		s.metrics.RecordScoreComputed(ctx, string(scoringdomain.KindGame), string(system))
	}
	return scoredGame{game: g, history: h, players: players, scores: scores}, nil
}

type scoredRound struct {
	round   scoringdb.Round
	entries []scoringdomain.RoundEntry
	scores  scoringdomain.RoundScores
	bonus   []scoringdomain.PlayerID
}

func (r scoredRound) result(system scoringdomain.RoundSystem) (*RoundScoreResult, error) {
	out := &RoundScoreResult{
		RoundID: r.round.UUID,
		Number:  r.round.Number,
		System:  system,
		Scores:  make(map[uuid.UUID]float64, len(r.scores)),
	}
	for p, score := range r.scores {
		id, err := parsePlayerID(p)
		if err != nil {
			return nil, fmt.Errorf("round %s: bad player id %q: %w", r.round.UUID, p, err)
		}
		out.Scores[id] = score
	}
	for _, p := range r.bonus {
		id, err := parsePlayerID(p)
		if err != nil {
			return nil, fmt.Errorf("round %s: bad player id %q: %w", r.round.UUID, p, err)
		}
		out.SitterBonus = append(out.SitterBonus, id)
	}
	return out, nil
}

// tournamentView is every scored game and round of one tournament.
type tournamentView struct {
	tournament *scoringdb.Tournament
	systems    systems
	players    []scoringdb.Player
	rounds     []scoredRound
	games      map[uuid.UUID][]scoredGame
}

// loadTournament scores every game and round of a tournament in round order,
// threading the sitter bonus context from one round to the next.
func (s *ScoringService) loadTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*tournamentView, error) {
	t, err := s.repo.GetTournament(ctx, db, tournamentID)
	if err != nil {
		return nil, err
	}
	sys, err := s.systemsOf(t)
	if err != nil {
		return nil, err
	}
	players, err := s.repo.ListPlayers(ctx, db, tournamentID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.repo.ListRounds(ctx, db, tournamentID)
	if err != nil {
		return nil, err
	}
	roundIDs := make([]uuid.UUID, 0, len(rounds))
	for _, r := range rounds {
		roundIDs = append(roundIDs, r.UUID)
	}
	games, err := s.repo.ListGames(ctx, db, roundIDs)
	if err != nil {
		return nil, err
	}
	gameIDs := make([]uuid.UUID, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.UUID)
	}
	gamePlayers, err := s.repo.ListGamePlayers(ctx, db, gameIDs)
	if err != nil {
		return nil, err
	}
	roundPlayers, err := s.repo.ListRoundPlayers(ctx, db, roundIDs)
	if err != nil {
		return nil, err
	}

	assigned := make(map[uuid.UUID][]scoringdb.GamePlayer, len(games))
	for _, gp := range gamePlayers {
		assigned[gp.GameUUID] = append(assigned[gp.GameUUID], gp)
	}
	entered := make(map[uuid.UUID][]scoringdb.RoundPlayer, len(rounds))
	for _, rp := range roundPlayers {
		entered[rp.RoundUUID] = append(entered[rp.RoundUUID], rp)
	}

	view := &tournamentView{
		tournament: t,
		systems:    sys,
		players:    players,
		games:      make(map[uuid.UUID][]scoredGame, len(rounds)),
	}
	for _, g := range games {
		sg, err := s.scoreGame(ctx, db, t, sys.game, g, assigned[g.UUID])
		if err != nil {
			return nil, err
		}
		view.games[g.RoundUUID] = append(view.games[g.RoundUUID], sg)
	}

	sitters := scoringdomain.NewSitterContext()
	for _, r := range rounds {
		entries := roundEntries(entered[r.UUID], view.games[r.UUID])
		bonus := sys.round.BonusRecipients(entries, sitters)
		scores, err := sys.round.Score(entries, sitters)
		if err != nil {
			return nil, err
		}
		sitters = sitters.WithRewarded(bonus...)
		if s.metrics != nil {
			s.metrics.RecordScoreComputed(ctx, string(scoringdomain.KindRound), string(sys.round))
		}
		view.rounds = append(view.rounds, scoredRound{round: r, entries: entries, scores: scores, bonus: bonus})
	}
	return view, nil
}

// roundEntries builds one entry per player who entered the round or played
// one of its games.
func roundEntries(entered []scoringdb.RoundPlayer, games []scoredGame) []scoringdomain.RoundEntry {
	byPlayer := make(map[scoringdomain.PlayerID]*scoringdomain.RoundEntry)
	entry := func(id uuid.UUID) *scoringdomain.RoundEntry {
		p := playerID(id)
		e, ok := byPlayer[p]
		if !ok {
			e = &scoringdomain.RoundEntry{Player: p}
			byPlayer[p] = e
		}
		return e
	}
	for _, rp := range entered {
		entry(rp.PlayerUUID).SatOut = rp.SatOut
	}
	for _, g := range games {
		for _, power := range scoringdomain.AllPowers() {
			id, ok := g.players[power]
			if !ok {
				continue
			}
			e := entry(id)
			e.GameScores = append(e.GameScores, g.scores[power])
		}
	}

	out := make([]scoringdomain.RoundEntry, 0, len(byPlayer))
	for _, e := range byPlayer {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b scoringdomain.RoundEntry) int {
		return cmp.Compare(a.Player, b.Player)
	})
	return out
}

func (v *tournamentView) round(roundID uuid.UUID) (scoredRound, bool) {
	for _, r := range v.rounds {
		if r.round.UUID == roundID {
			return r, true
		}
	}
	return scoredRound{}, false
}

// roundScores lists every player's rounds, played or skipped, in round order.
func (v *tournamentView) roundScores() map[scoringdomain.PlayerID][]scoringdomain.RoundScore {
	out := make(map[scoringdomain.PlayerID][]scoringdomain.RoundScore, len(v.players))
	ids := make([]scoringdomain.PlayerID, 0, len(v.players))
	for _, p := range v.players {
		ids = append(ids, playerID(p.UUID))
	}
	for _, r := range v.rounds {
		for p := range r.scores {
			if !slices.Contains(ids, p) {
				ids = append(ids, p)
			}
		}
	}
	for _, id := range ids {
		rounds := make([]scoringdomain.RoundScore, 0, len(v.rounds))
		for _, r := range v.rounds {
			if score, ok := r.scores[id]; ok {
				rounds = append(rounds, scoringdomain.PlayedRound(r.round.Number, score))
			} else {
				rounds = append(rounds, scoringdomain.SkippedRound(r.round.Number))
			}
		}
		out[id] = rounds
	}
	return out
}

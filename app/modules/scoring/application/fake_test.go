package scoringservice

import (
	"cmp"
	"context"
	"slices"

	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scoring Repo
// ------------------------

// FakeScoringRepo keeps rows in memory. A non-nil ...Func replaces the
// in-memory behaviour of that method.
type FakeScoringRepo struct {
	trace []string

	tournaments  map[uuid.UUID]*scoringdb.Tournament
	rounds       map[uuid.UUID]*scoringdb.Round
	games        map[uuid.UUID]*scoringdb.Game
	players      map[uuid.UUID]*scoringdb.Player
	roundPlayers []*scoringdb.RoundPlayer
	gamePlayers  []*scoringdb.GamePlayer
	counts       []scoringdb.CentreCount
	proposals    []scoringdb.DrawProposal

	GetTournamentFunc        func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*scoringdb.Tournament, error)
	UpsertTournamentFunc     func(ctx context.Context, db bun.IDB, t *scoringdb.Tournament) error
	GetRoundFunc             func(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*scoringdb.Round, error)
	ListRoundsFunc           func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]scoringdb.Round, error)
	UpsertRoundFunc          func(ctx context.Context, db bun.IDB, r *scoringdb.Round) error
	GetGameFunc              func(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*scoringdb.Game, error)
	ListGamesFunc            func(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]scoringdb.Game, error)
	UpsertGameFunc           func(ctx context.Context, db bun.IDB, g *scoringdb.Game) error
	MarkGameFinishedFunc     func(ctx context.Context, db bun.IDB, gameID uuid.UUID) error
	ListPlayersFunc          func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]scoringdb.Player, error)
	UpsertPlayerFunc         func(ctx context.Context, db bun.IDB, p *scoringdb.Player) error
	ListRoundPlayersFunc     func(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]scoringdb.RoundPlayer, error)
	UpsertRoundPlayerFunc    func(ctx context.Context, db bun.IDB, rp *scoringdb.RoundPlayer) error
	ListGamePlayersFunc      func(ctx context.Context, db bun.IDB, gameIDs []uuid.UUID) ([]scoringdb.GamePlayer, error)
	UpsertGamePlayerFunc     func(ctx context.Context, db bun.IDB, gp *scoringdb.GamePlayer) error
	ListCentreCountsFunc     func(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]scoringdb.CentreCount, error)
	UpsertCentreCountsFunc   func(ctx context.Context, db bun.IDB, counts []scoringdb.CentreCount) error
	ListDrawProposalsFunc    func(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]scoringdb.DrawProposal, error)
	InsertDrawProposalFunc   func(ctx context.Context, db bun.IDB, d *scoringdb.DrawProposal) error
	SaveGameScoresFunc       func(ctx context.Context, db bun.IDB, gameID uuid.UUID, scores map[string]float64) error
	SaveRoundScoresFunc      func(ctx context.Context, db bun.IDB, roundID uuid.UUID, scores map[uuid.UUID]float64) error
	SaveTournamentScoresFunc func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, scores map[uuid.UUID]float64) error
}

func NewFakeScoringRepo() *FakeScoringRepo {
	return &FakeScoringRepo{
		trace:       []string{},
		tournaments: map[uuid.UUID]*scoringdb.Tournament{},
		rounds:      map[uuid.UUID]*scoringdb.Round{},
		games:       map[uuid.UUID]*scoringdb.Game{},
		players:     map[uuid.UUID]*scoringdb.Player{},
	}
}

func (f *FakeScoringRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeScoringRepo) GetTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*scoringdb.Tournament, error) {
	f.record("GetTournament")
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, db, tournamentID)
	}
	if t, ok := f.tournaments[tournamentID]; ok {
		return t, nil
	}
	return nil, scoringdb.ErrNotFound
}

func (f *FakeScoringRepo) UpsertTournament(ctx context.Context, db bun.IDB, t *scoringdb.Tournament) error {
	f.record("UpsertTournament")
	if f.UpsertTournamentFunc != nil {
		return f.UpsertTournamentFunc(ctx, db, t)
	}
	f.tournaments[t.UUID] = t
	return nil
}

func (f *FakeScoringRepo) GetRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*scoringdb.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, roundID)
	}
	if r, ok := f.rounds[roundID]; ok {
		return r, nil
	}
	return nil, scoringdb.ErrNotFound
}

func (f *FakeScoringRepo) ListRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]scoringdb.Round, error) {
	f.record("ListRounds")
	if f.ListRoundsFunc != nil {
		return f.ListRoundsFunc(ctx, db, tournamentID)
	}
	var out []scoringdb.Round
	for _, r := range f.rounds {
		if r.TournamentUUID == tournamentID {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b scoringdb.Round) int { return a.Number - b.Number })
	return out, nil
}

func (f *FakeScoringRepo) UpsertRound(ctx context.Context, db bun.IDB, r *scoringdb.Round) error {
	f.record("UpsertRound")
	if f.UpsertRoundFunc != nil {
		return f.UpsertRoundFunc(ctx, db, r)
	}
	f.rounds[r.UUID] = r
	return nil
}

func (f *FakeScoringRepo) GetGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*scoringdb.Game, error) {
	f.record("GetGame")
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, db, gameID)
	}
	if g, ok := f.games[gameID]; ok {
		return g, nil
	}
	return nil, scoringdb.ErrNotFound
}

func (f *FakeScoringRepo) ListGames(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]scoringdb.Game, error) {
	f.record("ListGames")
	if f.ListGamesFunc != nil {
		return f.ListGamesFunc(ctx, db, roundIDs)
	}
	var out []scoringdb.Game
	for _, g := range f.games {
		if slices.Contains(roundIDs, g.RoundUUID) {
			out = append(out, *g)
		}
	}
	slices.SortFunc(out, func(a, b scoringdb.Game) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (f *FakeScoringRepo) UpsertGame(ctx context.Context, db bun.IDB, g *scoringdb.Game) error {
	f.record("UpsertGame")
	if f.UpsertGameFunc != nil {
		return f.UpsertGameFunc(ctx, db, g)
	}
	f.games[g.UUID] = g
	return nil
}

func (f *FakeScoringRepo) MarkGameFinished(ctx context.Context, db bun.IDB, gameID uuid.UUID) error {
	f.record("MarkGameFinished")
	if f.MarkGameFinishedFunc != nil {
		return f.MarkGameFinishedFunc(ctx, db, gameID)
	}
	g, ok := f.games[gameID]
	if !ok {
		return scoringdb.ErrNoRowsAffected
	}
	g.Finished = true
	return nil
}

func (f *FakeScoringRepo) ListPlayers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]scoringdb.Player, error) {
	f.record("ListPlayers")
	if f.ListPlayersFunc != nil {
		return f.ListPlayersFunc(ctx, db, tournamentID)
	}
	var out []scoringdb.Player
	for _, p := range f.players {
		if p.TournamentUUID == tournamentID {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(a, b scoringdb.Player) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (f *FakeScoringRepo) UpsertPlayer(ctx context.Context, db bun.IDB, p *scoringdb.Player) error {
	f.record("UpsertPlayer")
	if f.UpsertPlayerFunc != nil {
		return f.UpsertPlayerFunc(ctx, db, p)
	}
	f.players[p.UUID] = p
	return nil
}

func (f *FakeScoringRepo) ListRoundPlayers(ctx context.Context, db bun.IDB, roundIDs []uuid.UUID) ([]scoringdb.RoundPlayer, error) {
	f.record("ListRoundPlayers")
	if f.ListRoundPlayersFunc != nil {
		return f.ListRoundPlayersFunc(ctx, db, roundIDs)
	}
	var out []scoringdb.RoundPlayer
	for _, rp := range f.roundPlayers {
		if slices.Contains(roundIDs, rp.RoundUUID) {
			out = append(out, *rp)
		}
	}
	return out, nil
}

func (f *FakeScoringRepo) UpsertRoundPlayer(ctx context.Context, db bun.IDB, rp *scoringdb.RoundPlayer) error {
	f.record("UpsertRoundPlayer")
	if f.UpsertRoundPlayerFunc != nil {
		return f.UpsertRoundPlayerFunc(ctx, db, rp)
	}
	f.roundPlayers = append(f.roundPlayers, rp)
	return nil
}

func (f *FakeScoringRepo) ListGamePlayers(ctx context.Context, db bun.IDB, gameIDs []uuid.UUID) ([]scoringdb.GamePlayer, error) {
	f.record("ListGamePlayers")
	if f.ListGamePlayersFunc != nil {
		return f.ListGamePlayersFunc(ctx, db, gameIDs)
	}
	var out []scoringdb.GamePlayer
	for _, gp := range f.gamePlayers {
		if slices.Contains(gameIDs, gp.GameUUID) {
			out = append(out, *gp)
		}
	}
	return out, nil
}

func (f *FakeScoringRepo) UpsertGamePlayer(ctx context.Context, db bun.IDB, gp *scoringdb.GamePlayer) error {
	f.record("UpsertGamePlayer")
	if f.UpsertGamePlayerFunc != nil {
		return f.UpsertGamePlayerFunc(ctx, db, gp)
	}
	f.gamePlayers = append(f.gamePlayers, gp)
	return nil
}

func (f *FakeScoringRepo) ListCentreCounts(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]scoringdb.CentreCount, error) {
	f.record("ListCentreCounts")
	if f.ListCentreCountsFunc != nil {
		return f.ListCentreCountsFunc(ctx, db, gameID)
	}
	var out []scoringdb.CentreCount
	for _, c := range f.counts {
		if c.GameUUID == gameID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *FakeScoringRepo) UpsertCentreCounts(ctx context.Context, db bun.IDB, counts []scoringdb.CentreCount) error {
	f.record("UpsertCentreCounts")
	if f.UpsertCentreCountsFunc != nil {
		return f.UpsertCentreCountsFunc(ctx, db, counts)
	}
	f.counts = append(f.counts, counts...)
	return nil
}

func (f *FakeScoringRepo) ListDrawProposals(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]scoringdb.DrawProposal, error) {
	f.record("ListDrawProposals")
	if f.ListDrawProposalsFunc != nil {
		return f.ListDrawProposalsFunc(ctx, db, gameID)
	}
	var out []scoringdb.DrawProposal
	for _, d := range f.proposals {
		if d.GameUUID == gameID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *FakeScoringRepo) InsertDrawProposal(ctx context.Context, db bun.IDB, d *scoringdb.DrawProposal) error {
	f.record("InsertDrawProposal")
	if f.InsertDrawProposalFunc != nil {
		return f.InsertDrawProposalFunc(ctx, db, d)
	}
	d.ID = int64(len(f.proposals) + 1)
	f.proposals = append(f.proposals, *d)
	return nil
}

func (f *FakeScoringRepo) SaveGameScores(ctx context.Context, db bun.IDB, gameID uuid.UUID, scores map[string]float64) error {
	f.record("SaveGameScores")
	if f.SaveGameScoresFunc != nil {
		return f.SaveGameScoresFunc(ctx, db, gameID, scores)
	}
	for _, gp := range f.gamePlayers {
		if score, ok := scores[gp.Power]; ok && gp.GameUUID == gameID {
			gp.Score = &score
		}
	}
	return nil
}

func (f *FakeScoringRepo) SaveRoundScores(ctx context.Context, db bun.IDB, roundID uuid.UUID, scores map[uuid.UUID]float64) error {
	f.record("SaveRoundScores")
	if f.SaveRoundScoresFunc != nil {
		return f.SaveRoundScoresFunc(ctx, db, roundID, scores)
	}
	for _, rp := range f.roundPlayers {
		if score, ok := scores[rp.PlayerUUID]; ok && rp.RoundUUID == roundID {
			rp.Score = &score
		}
	}
	return nil
}

func (f *FakeScoringRepo) SaveTournamentScores(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, scores map[uuid.UUID]float64) error {
	f.record("SaveTournamentScores")
	if f.SaveTournamentScoresFunc != nil {
		return f.SaveTournamentScoresFunc(ctx, db, tournamentID, scores)
	}
	for id, score := range scores {
		if p, ok := f.players[id]; ok {
			p.Score = &score
		}
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeScoringRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ scoringdb.Repository = (*FakeScoringRepo)(nil)

// ------------------------
// Fake Scheduler
// ------------------------

type FakeScheduler struct {
	scheduled []uuid.UUID
	err       error
}

func (f *FakeScheduler) ScheduleStoreScores(ctx context.Context, gameID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, gameID)
	return nil
}

var _ StoreScoresScheduler = (*FakeScheduler)(nil)

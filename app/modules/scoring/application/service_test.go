package scoringservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	scoringmetrics "github.com/Black-And-White-Club/dip-scoring/app/shared/observability/metrics/scoring"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

var powers = scoringdomain.AllPowers()

func playerUUID(i int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1))
}

// fixture is a three round tournament of eight players scored with raw
// centre counts, the best game per round with a single sitter bonus, and the
// best two rounds.
type fixture struct {
	repo       *FakeScoringRepo
	tournament *scoringdb.Tournament
	rounds     []*scoringdb.Round
	games      []*scoringdb.Game
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: NewFakeScoringRepo()}
	ctx := context.Background()

	f.tournament = &scoringdb.Tournament{
		UUID:             uuid.New(),
		Name:             "Test Open",
		GameSystem:       string(scoringdomain.CentreCountCarnage),
		RoundSystem:      string(scoringdomain.BestGameSitterBonusOnce),
		TournamentSystem: "Sum best 2 rounds",
		TotalCentres:     34,
		SoloThreshold:    18,
	}
	require.NoError(t, f.repo.UpsertTournament(ctx, nil, f.tournament))

	for i := range 8 {
		require.NoError(t, f.repo.UpsertPlayer(ctx, nil, &scoringdb.Player{
			UUID:           playerUUID(i),
			TournamentUUID: f.tournament.UUID,
			Name:           fmt.Sprintf("Player %d", i),
			Unranked:       i == 4,
		}))
	}

	type roundLayout struct {
		seats  []int
		satOut int
		counts []int
	}
	layouts := []roundLayout{
		{seats: []int{0, 1, 2, 3, 4, 5, 6}, satOut: 7, counts: []int{3, 5, 5, 4, 5, 6, 6}},
		{seats: []int{1, 2, 3, 4, 5, 6, 7}, satOut: 0, counts: []int{2, 6, 6, 4, 4, 6, 6}},
		{seats: []int{0, 1, 2, 3, 4, 5, 6}, satOut: 7, counts: []int{4, 4, 6, 5, 5, 5, 5}},
	}
	for n, layout := range layouts {
		r := &scoringdb.Round{UUID: uuid.New(), TournamentUUID: f.tournament.UUID, Number: n + 1}
		require.NoError(t, f.repo.UpsertRound(ctx, nil, r))
		f.rounds = append(f.rounds, r)

		g := &scoringdb.Game{UUID: uuid.New(), RoundUUID: r.UUID, Name: fmt.Sprintf("R%dG1", n+1), Finished: true}
		require.NoError(t, f.repo.UpsertGame(ctx, nil, g))
		f.games = append(f.games, g)

		require.NoError(t, f.repo.UpsertRoundPlayer(ctx, nil, &scoringdb.RoundPlayer{
			RoundUUID: r.UUID, PlayerUUID: playerUUID(layout.satOut), SatOut: true,
		}))
		var counts []scoringdomain.CentreCount
		for i, p := range powers {
			require.NoError(t, f.repo.UpsertRoundPlayer(ctx, nil, &scoringdb.RoundPlayer{
				RoundUUID: r.UUID, PlayerUUID: playerUUID(layout.seats[i]),
			}))
			require.NoError(t, f.repo.UpsertGamePlayer(ctx, nil, &scoringdb.GamePlayer{
				GameUUID: g.UUID, Power: p.String(), PlayerUUID: playerUUID(layout.seats[i]),
			}))
			counts = append(counts, scoringdomain.CentreCount{Power: p, Year: 1902, Count: layout.counts[i]})
		}
		require.NoError(t, f.repo.UpsertCentreCounts(ctx, nil, scoringdb.FromCentreCounts(g, counts)))
	}
	f.repo.trace = nil
	return f
}

func newTestService(repo scoringdb.Repository) *ScoringService {
	return NewScoringService(
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		scoringmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}

func TestScoreGame(t *testing.T) {
	tests := []struct {
		name        string
		setupRepo   func(*fixture)
		unknownGame bool
		wantErr     bool
		wantErrType error
	}{
		{
			name: "happy path",
		},
		{
			name:        "game not found",
			unknownGame: true,
			wantErr:     true,
			wantErrType: scoringdb.ErrNotFound,
		},
		{
			name: "unknown game system",
			setupRepo: func(f *fixture) {
				f.tournament.GameSystem = "Bridge"
			},
			wantErr:     true,
			wantErrType: scoringdomain.ErrUnknownScoringSystem,
		},
		{
			name: "database error",
			setupRepo: func(f *fixture) {
				f.repo.ListCentreCountsFunc = func(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]scoringdb.CentreCount, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setupRepo != nil {
				tt.setupRepo(f)
			}
			gameID := f.games[0].UUID
			if tt.unknownGame {
				gameID = uuid.New()
			}

			result, err := newTestService(f.repo).ScoreGame(context.Background(), gameID)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrType != nil {
					assert.ErrorIs(t, err, tt.wantErrType)
				}
				assert.Equal(t, tt.wantErrType != nil, IsFailure(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, scoringdomain.CentreCountCarnage, result.System)
			assert.Equal(t, scoringdomain.OutcomeCarnage, result.Outcome)
			assert.Equal(t, 6.0, result.Scores[scoringdomain.Russia])
			assert.Equal(t, 3.0, result.Scores[scoringdomain.Austria])
			assert.Equal(t, playerUUID(0), result.Players[scoringdomain.Austria])
			assert.Len(t, result.Scores, scoringdomain.PowerCount)
		})
	}
}

func TestScoreRoundAppliesSitterBonusOnce(t *testing.T) {
	f := newFixture(t)
	svc := newTestService(f.repo)

	first, err := svc.ScoreRound(context.Background(), f.rounds[0].UUID)
	require.NoError(t, err)
	assert.Equal(t, float64(scoringdomain.SitterBonus), first.Scores[playerUUID(7)])
	assert.Equal(t, []uuid.UUID{playerUUID(7)}, first.SitterBonus)
	assert.Equal(t, 3.0, first.Scores[playerUUID(0)])

	second, err := svc.ScoreRound(context.Background(), f.rounds[1].UUID)
	require.NoError(t, err)
	assert.Equal(t, float64(scoringdomain.SitterBonus), second.Scores[playerUUID(0)])

	third, err := svc.ScoreRound(context.Background(), f.rounds[2].UUID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, third.Scores[playerUUID(7)], "second sit out earns nothing")
	assert.Empty(t, third.SitterBonus)
	assert.Len(t, third.Scores, 8)
}

func TestScoreRoundNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := newTestService(f.repo).ScoreRound(context.Background(), uuid.New())
	assert.ErrorIs(t, err, scoringdb.ErrNotFound)
}

func TestScoreTournamentStandings(t *testing.T) {
	f := newFixture(t)

	result, err := newTestService(f.repo).ScoreTournament(context.Background(), f.tournament.UUID)
	require.NoError(t, err)

	assert.Equal(t, 4011.0, result.Scores[playerUUID(7)])
	assert.Equal(t, 4009.0, result.Scores[playerUUID(0)])
	assert.Equal(t, 9.0, result.Scores[playerUUID(1)])

	type row struct {
		name string
		rank int
	}
	var got []row
	for _, st := range result.Standings {
		got = append(got, row{st.Name, st.Rank})
	}
	assert.Equal(t, []row{
		{"Player 7", 1},
		{"Player 0", 2},
		{"Player 2", 3},
		{"Player 6", 3},
		{"Player 3", 5},
		{"Player 5", 5},
		{"Player 1", 7},
		{"Player 4", scoringdomain.Unranked},
	}, got)

	p0 := result.Standings[1]
	require.Len(t, p0.Rounds, 3)
	assert.Equal(t, 3.0, *p0.Rounds[0])
	assert.Equal(t, float64(scoringdomain.SitterBonus), *p0.Rounds[1])
}

func TestStandingsSkippedRound(t *testing.T) {
	f := newFixture(t)
	late := &scoringdb.Player{UUID: uuid.New(), TournamentUUID: f.tournament.UUID, Name: "Latecomer"}
	f.repo.players[late.UUID] = late

	standings, err := newTestService(f.repo).Standings(context.Background(), f.tournament.UUID)
	require.NoError(t, err)

	var found *Standing
	for i := range standings {
		if standings[i].PlayerID == late.UUID {
			found = &standings[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, []*float64{nil, nil, nil}, found.Rounds)
	assert.Equal(t, 0.0, found.Score)
}

func TestBestCountries(t *testing.T) {
	f := newFixture(t)

	best, err := newTestService(f.repo).BestCountries(context.Background(), f.tournament.UUID, true)
	require.NoError(t, err)

	assert.Len(t, best, scoringdomain.PowerCount)
	russia := best[scoringdomain.Russia]
	require.Len(t, russia, 3)
	assert.Equal(t, 6, russia[0].Centres)
	assert.Equal(t, 5, russia[2].Centres)
	assert.Equal(t, "R3G1", russia[2].Game)
}

func TestRecordCentreCounts(t *testing.T) {
	tests := []struct {
		name        string
		counts      []scoringdomain.CentreCount
		wantErrType error
		wantStored  bool
	}{
		{
			name: "consistent year is stored",
			counts: []scoringdomain.CentreCount{
				{Power: scoringdomain.Russia, Year: 1903, Count: 8},
				{Power: scoringdomain.Austria, Year: 1903, Count: 1},
			},
			wantStored: true,
		},
		{
			name: "board overflow is rejected",
			counts: []scoringdomain.CentreCount{
				{Power: scoringdomain.Russia, Year: 1902, Count: 20},
			},
			wantErrType: scoringdomain.ErrBoardOverflow,
		},
		{
			name:        "year before the game is rejected",
			counts:      []scoringdomain.CentreCount{{Power: scoringdomain.Russia, Year: 1899, Count: 4}},
			wantErrType: scoringdomain.ErrInvalidYear,
		},
		{
			name:        "unknown power is rejected",
			counts:      []scoringdomain.CentreCount{{Power: "Prussia", Year: 1903, Count: 4}},
			wantErrType: scoringdomain.ErrUnknownPower,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			err := newTestService(f.repo).RecordCentreCounts(context.Background(), f.games[0].UUID, tt.counts)

			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStored, contains(f.repo.Trace(), "UpsertCentreCounts"))
		})
	}
}

func TestRecordDrawProposal(t *testing.T) {
	t.Run("DIAS vote is filled with survivors", func(t *testing.T) {
		f := newFixture(t)
		f.tournament.DIAS = true

		err := newTestService(f.repo).RecordDrawProposal(context.Background(), f.games[0].UUID, scoringdomain.DrawProposal{
			Year:   1903,
			Season: scoringdomain.Spring,
			Status: scoringdomain.DrawPassed,
		})
		require.NoError(t, err)
		require.Len(t, f.repo.proposals, 1)
		assert.Len(t, f.repo.proposals[0].Powers, scoringdomain.PowerCount)
	})

	t.Run("empty vote outside DIAS is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := newTestService(f.repo).RecordDrawProposal(context.Background(), f.games[0].UUID, scoringdomain.DrawProposal{
			Year:   1903,
			Season: scoringdomain.Spring,
		})
		assert.ErrorIs(t, err, ErrEmptyDrawProposal)
		assert.Empty(t, f.repo.proposals)
	})

	t.Run("DIAS vote excluding a survivor is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.tournament.DIAS = true

		err := newTestService(f.repo).RecordDrawProposal(context.Background(), f.games[0].UUID, scoringdomain.DrawProposal{
			Year:   1903,
			Season: scoringdomain.Fall,
			Powers: []scoringdomain.GreatPower{scoringdomain.Russia, scoringdomain.Turkey},
			Status: scoringdomain.DrawPassed,
		})
		assert.ErrorIs(t, err, scoringdomain.ErrDrawExcludesSurvivor)
	})

	t.Run("unknown season is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := newTestService(f.repo).RecordDrawProposal(context.Background(), f.games[0].UUID, scoringdomain.DrawProposal{
			Year:   1903,
			Season: "W",
			Powers: []scoringdomain.GreatPower{scoringdomain.Russia},
		})
		assert.ErrorIs(t, err, scoringdomain.ErrInvalidDrawProposal)
		assert.True(t, IsFailure(err))
	})
}

func TestFinishGame(t *testing.T) {
	t.Run("schedules storage when a queue is wired", func(t *testing.T) {
		f := newFixture(t)
		f.games[1].Finished = false
		scheduler := &FakeScheduler{}
		svc := newTestService(f.repo)
		svc.SetScheduler(scheduler)

		result, err := svc.FinishGame(context.Background(), f.games[1].UUID)
		require.NoError(t, err)

		assert.True(t, f.games[1].Finished)
		assert.Equal(t, scoringdomain.OutcomeCarnage, result.Outcome)
		assert.Equal(t, []uuid.UUID{f.games[1].UUID}, scheduler.scheduled)
		assert.False(t, contains(f.repo.Trace(), "SaveTournamentScores"))
	})

	t.Run("stores inline without a queue", func(t *testing.T) {
		f := newFixture(t)

		_, err := newTestService(f.repo).FinishGame(context.Background(), f.games[1].UUID)
		require.NoError(t, err)
		assert.True(t, contains(f.repo.Trace(), "SaveTournamentScores"))
	})

	t.Run("unknown game", func(t *testing.T) {
		f := newFixture(t)

		_, err := newTestService(f.repo).FinishGame(context.Background(), uuid.New())
		assert.ErrorIs(t, err, scoringdb.ErrNotFound)
	})

	t.Run("unscorable game is a failure", func(t *testing.T) {
		f := newFixture(t)
		f.tournament.GameSystem = "No such system"
		scheduler := &FakeScheduler{}
		svc := newTestService(f.repo)
		svc.SetScheduler(scheduler)

		result, err := svc.FinishGame(context.Background(), f.games[1].UUID)
		assert.Nil(t, result)
		assert.True(t, IsFailure(err))
		assert.ErrorIs(t, err, scoringdomain.ErrUnknownScoringSystem)
		assert.NotErrorIs(t, err, errRollback)
		assert.Empty(t, scheduler.scheduled)
	})

	t.Run("scheduler failure is reported", func(t *testing.T) {
		f := newFixture(t)
		svc := newTestService(f.repo)
		svc.SetScheduler(&FakeScheduler{err: errors.New("queue down")})

		result, err := svc.FinishGame(context.Background(), f.games[0].UUID)
		assert.ErrorContains(t, err, "queue down")
		assert.NotNil(t, result)
	})
}

func TestStoreScores(t *testing.T) {
	f := newFixture(t)

	stored, err := newTestService(f.repo).StoreScores(context.Background(), f.games[2].UUID)
	require.NoError(t, err)

	assert.Equal(t, 3, stored.Games)
	assert.Equal(t, 3, stored.Rounds)
	assert.Equal(t, 8, stored.Players)

	require.NotNil(t, f.repo.players[playerUUID(7)].Score)
	assert.Equal(t, 4011.0, *f.repo.players[playerUUID(7)].Score)
	for _, gp := range f.repo.gamePlayers {
		assert.NotNil(t, gp.Score, "game player %s in %s", gp.Power, gp.GameUUID)
	}
}

func TestStoreScoresRollsUpRepoFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.SaveRoundScoresFunc = func(ctx context.Context, db bun.IDB, roundID uuid.UUID, scores map[uuid.UUID]float64) error {
		return errors.New("disk full")
	}

	_, err := newTestService(f.repo).StoreScores(context.Background(), f.games[0].UUID)
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, contains(f.repo.Trace(), "SaveTournamentScores"))
}

func TestExportStandings(t *testing.T) {
	f := newFixture(t)

	data, err := newTestService(f.repo).ExportStandings(context.Background(), f.tournament.UUID)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(standingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, []string{"Rank", "Player", "Score", "Round 1", "Round 2", "Round 3"}, rows[0])
	assert.Equal(t, []string{"1", "Player 7", "4011", "4005", "6", "0"}, rows[1])
	assert.Equal(t, "", rows[8][0], "unranked player has no rank")
}

func TestCentreCountChart(t *testing.T) {
	pngMagic := []byte("\x89PNG")

	f := newFixture(t)
	data, err := newTestService(f.repo).CentreCountChart(context.Background(), f.games[0].UUID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	empty, err := GenerateCentreCountChart(scoringdomain.NewGameHistory(scoringdomain.Snapshot{}))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, pngMagic))
}

func contains(trace []string, step string) bool {
	for _, s := range trace {
		if s == step {
			return true
		}
	}
	return false
}

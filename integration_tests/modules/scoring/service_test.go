//go:build integration

package scoringintegrationtests

import (
	"testing"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreGameAgainstDatabase(t *testing.T) {
	deps := SetupTestScoringService(t)
	ctx := deps.Env.Ctx

	fixture, err := deps.Gen.SeedTournament(ctx, nil, deps.Repo, defaultOptions())
	require.NoError(t, err)

	for _, g := range fixture.AllGames() {
		res, err := deps.Service.ScoreGame(ctx, g.UUID)
		require.NoError(t, err)
		assert.Len(t, res.Scores, scoringdomain.PowerCount)
		assert.Equal(t, scoringdomain.SumOfSquares, res.System)
		assert.Len(t, res.Players, scoringdomain.PowerCount)
	}
}

func TestScoreGameMissing(t *testing.T) {
	deps := SetupTestScoringService(t)

	_, err := deps.Service.ScoreGame(deps.Env.Ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, scoringservice.IsFailure(err))
	assert.ErrorIs(t, err, scoringdb.ErrNotFound)
}

func TestScoreTournamentStandings(t *testing.T) {
	deps := SetupTestScoringService(t)
	ctx := deps.Env.Ctx

	fixture, err := deps.Gen.SeedTournament(ctx, nil, deps.Repo, defaultOptions())
	require.NoError(t, err)

	res, err := deps.Service.ScoreTournament(ctx, fixture.Tournament.UUID)
	require.NoError(t, err)
	require.Len(t, res.Standings, len(fixture.Players))

	for i := 1; i < len(res.Standings); i++ {
		prev, cur := res.Standings[i-1], res.Standings[i]
		assert.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.Equal(t, prev.Rank, cur.Rank)
		}
		assert.Len(t, cur.Rounds, len(fixture.Rounds))
	}
	assert.Equal(t, 1, res.Standings[0].Rank)
}

func TestFinishGameStoresScoresInline(t *testing.T) {
	deps := SetupTestScoringService(t)
	ctx := deps.Env.Ctx

	opts := defaultOptions()
	opts.Finished = false
	fixture, err := deps.Gen.SeedTournament(ctx, nil, deps.Repo, opts)
	require.NoError(t, err)
	game := fixture.Games[0][0]

	res, err := deps.Service.FinishGame(ctx, game.UUID)
	require.NoError(t, err)
	assert.NotEqual(t, scoringdomain.OutcomeOngoing, res.Outcome)

	stored, err := deps.Repo.GetGame(ctx, nil, game.UUID)
	require.NoError(t, err)
	assert.True(t, stored.Finished)

	gps, err := deps.Repo.ListGamePlayers(ctx, nil, []uuid.UUID{game.UUID})
	require.NoError(t, err)
	for _, gp := range gps {
		require.NotNil(t, gp.Score, "power %s has no stored score", gp.Power)
		assert.InDelta(t, res.Scores[scoringdomain.GreatPower(gp.Power)], *gp.Score, 1e-9)
	}

	players, err := deps.Repo.ListPlayers(ctx, nil, fixture.Tournament.UUID)
	require.NoError(t, err)
	for _, p := range players {
		assert.NotNil(t, p.Score)
	}
}

func TestFinishGameRollsBackWhenUnscorable(t *testing.T) {
	deps := SetupTestScoringService(t)
	ctx := deps.Env.Ctx

	opts := defaultOptions()
	opts.Finished = false
	opts.GameSystem = "No such system"
	fixture, err := deps.Gen.SeedTournament(ctx, nil, deps.Repo, opts)
	require.NoError(t, err)
	game := fixture.Games[0][0]

	_, err = deps.Service.FinishGame(ctx, game.UUID)
	require.Error(t, err)
	assert.True(t, scoringservice.IsFailure(err))
	assert.ErrorIs(t, err, scoringdomain.ErrUnknownScoringSystem)

	stored, err := deps.Repo.GetGame(ctx, nil, game.UUID)
	require.NoError(t, err)
	assert.False(t, stored.Finished)
}

func TestRecordCentreCountsRejectsOverflow(t *testing.T) {
	deps := SetupTestScoringService(t)
	ctx := deps.Env.Ctx

	fixture, err := deps.Gen.SeedTournament(ctx, nil, deps.Repo, defaultOptions())
	require.NoError(t, err)
	game := fixture.Games[0][0]

	var counts []scoringdomain.CentreCount
	for _, p := range scoringdomain.AllPowers() {
		counts = append(counts, scoringdomain.CentreCount{Power: p, Year: 1950, Count: 10})
	}
	err = deps.Service.RecordCentreCounts(ctx, game.UUID, counts)
	require.Error(t, err)
	assert.True(t, scoringservice.IsFailure(err))

	stored, err := deps.Repo.ListCentreCounts(ctx, nil, game.UUID)
	require.NoError(t, err)
	for _, cc := range stored {
		assert.NotEqual(t, 1950, cc.Year)
	}
}

func TestExportsRender(t *testing.T) {
	deps := SetupTestScoringService(t)
	ctx := deps.Env.Ctx

	fixture, err := deps.Gen.SeedTournament(ctx, nil, deps.Repo, defaultOptions())
	require.NoError(t, err)

	xlsx, err := deps.Service.ExportStandings(ctx, fixture.Tournament.UUID)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(xlsx[:2]))

	png, err := deps.Service.CentreCountChart(ctx, fixture.Games[0][0].UUID)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}

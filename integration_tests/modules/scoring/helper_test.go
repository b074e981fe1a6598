//go:build integration

package scoringintegrationtests

import (
	"testing"

	scoringservice "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	scoringmetrics "github.com/Black-And-White-Club/dip-scoring/app/shared/observability/metrics/scoring"
	"github.com/Black-And-White-Club/dip-scoring/integration_tests/testutils"
	"go.opentelemetry.io/otel/trace/noop"
)

type TestDeps struct {
	Env     *testutils.TestEnvironment
	Repo    scoringdb.Repository
	Service *scoringservice.ScoringService
	Gen     *testutils.TestDataGenerator
}

func SetupTestScoringService(t *testing.T) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	env.Reset(t)

	repo := scoringdb.NewRepository(env.DB)
	service := scoringservice.NewScoringService(
		repo,
		env.Logger,
		scoringmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test_scoring_service"),
		env.DB,
	)

	gen := testutils.NewTestDataGenerator(42)
	t.Logf("data generator seed %d", gen.Seed())

	return TestDeps{Env: env, Repo: repo, Service: service, Gen: gen}
}

func defaultOptions() testutils.TournamentOptions {
	return testutils.TournamentOptions{
		GameSystem:       scoringdomain.SumOfSquares,
		RoundSystem:      scoringdomain.BestGameCounts,
		TournamentSystem: scoringdomain.SumBest2,
		Rounds:           2,
		BoardsPerRound:   2,
		Years:            6,
		Finished:         true,
	}
}

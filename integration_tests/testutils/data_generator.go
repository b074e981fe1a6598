package testutils

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// TournamentOptions shapes a generated tournament.
type TournamentOptions struct {
	GameSystem       scoringdomain.GameSystem
	RoundSystem      scoringdomain.RoundSystem
	TournamentSystem scoringdomain.TournamentSystem
	Rounds           int
	BoardsPerRound   int
	Years            int
	Finished         bool
}

// Fixture is a seeded tournament.
type Fixture struct {
	Tournament scoringdb.Tournament
	Rounds     []scoringdb.Round
	// Games holds each round's games in round order.
	Games   [][]scoringdb.Game
	Players []scoringdb.Player
}

// AllGames flattens the fixture's games.
func (f *Fixture) AllGames() []scoringdb.Game {
	var out []scoringdb.Game
	for _, gs := range f.Games {
		out = append(out, gs...)
	}
	return out
}

// GenerateTournament builds a tournament row.
func (g *TestDataGenerator) GenerateTournament(opts TournamentOptions) scoringdb.Tournament {
	return scoringdb.Tournament{
		UUID:             uuid.New(),
		Name:             fmt.Sprintf("%s Open", g.faker.City()),
		GameSystem:       string(opts.GameSystem),
		RoundSystem:      string(opts.RoundSystem),
		TournamentSystem: string(opts.TournamentSystem),
		TotalCentres:     scoringdomain.StandardBoard.TotalCentres,
		SoloThreshold:    scoringdomain.StandardBoard.SoloThreshold,
	}
}

// GeneratePlayers builds count players for a tournament.
func (g *TestDataGenerator) GeneratePlayers(tournamentID uuid.UUID, count int) []scoringdb.Player {
	out := make([]scoringdb.Player, count)
	for i := range out {
		out[i] = scoringdb.Player{
			UUID:           uuid.New(),
			TournamentUUID: tournamentID,
			Name:           g.faker.Name(),
		}
	}
	return out
}

// GenerateCentreCounts plays out years of plausible counts: alive powers
// drift by a few centres a year, eliminated powers stay out and the board
// never holds more than 34 owned centres.
func (g *TestDataGenerator) GenerateCentreCounts(gameID uuid.UUID, years int) []scoringdb.CentreCount {
	current := map[scoringdomain.GreatPower]int{}
	for _, p := range scoringdomain.AllPowers() {
		current[p] = 3
	}
	current[scoringdomain.Russia] = 4

	var out []scoringdb.CentreCount
	for y := scoringdomain.FirstGameYear; y < scoringdomain.FirstGameYear+years; y++ {
		total := 0
		for _, p := range scoringdomain.AllPowers() {
			if current[p] > 0 {
				current[p] = max(current[p]+g.faker.IntRange(-2, 3), 0)
			}
			total += current[p]
		}
		for total > scoringdomain.StandardBoard.TotalCentres {
			top := slices.MaxFunc(scoringdomain.AllPowers(), func(a, b scoringdomain.GreatPower) int {
				return current[a] - current[b]
			})
			current[top]--
			total--
		}
		for _, p := range scoringdomain.AllPowers() {
			out = append(out, scoringdb.CentreCount{
				GameUUID: gameID,
				Power:    string(p),
				Year:     y,
				Count:    current[p],
			})
		}
	}
	return out
}

// SeedTournament writes a full tournament: rounds, boards of seven players,
// round entries and generated centre counts.
func (g *TestDataGenerator) SeedTournament(ctx context.Context, db bun.IDB, repo scoringdb.Repository, opts TournamentOptions) (*Fixture, error) {
	if opts.Rounds <= 0 {
		opts.Rounds = 1
	}
	if opts.BoardsPerRound <= 0 {
		opts.BoardsPerRound = 1
	}
	if opts.Years <= 0 {
		opts.Years = 5
	}

	f := &Fixture{Tournament: g.GenerateTournament(opts)}
	if err := repo.UpsertTournament(ctx, db, &f.Tournament); err != nil {
		return nil, err
	}

	f.Players = g.GeneratePlayers(f.Tournament.UUID, scoringdomain.PowerCount*opts.BoardsPerRound)
	for i := range f.Players {
		if err := repo.UpsertPlayer(ctx, db, &f.Players[i]); err != nil {
			return nil, err
		}
	}

	powers := scoringdomain.AllPowers()
	for n := 1; n <= opts.Rounds; n++ {
		round := scoringdb.Round{UUID: uuid.New(), TournamentUUID: f.Tournament.UUID, Number: n}
		if err := repo.UpsertRound(ctx, db, &round); err != nil {
			return nil, err
		}
		f.Rounds = append(f.Rounds, round)

		order := slices.Clone(f.Players)
		g.faker.ShuffleAnySlice(order)

		var games []scoringdb.Game
		for b := 0; b < opts.BoardsPerRound; b++ {
			game := scoringdb.Game{
				UUID:      uuid.New(),
				RoundUUID: round.UUID,
				Name:      fmt.Sprintf("R%dB%d", n, b+1),
				Finished:  opts.Finished,
			}
			if err := repo.UpsertGame(ctx, db, &game); err != nil {
				return nil, err
			}
			for i, p := range powers {
				player := order[b*scoringdomain.PowerCount+i]
				if err := repo.UpsertGamePlayer(ctx, db, &scoringdb.GamePlayer{
					GameUUID:   game.UUID,
					Power:      string(p),
					PlayerUUID: player.UUID,
				}); err != nil {
					return nil, err
				}
				if err := repo.UpsertRoundPlayer(ctx, db, &scoringdb.RoundPlayer{
					RoundUUID:  round.UUID,
					PlayerUUID: player.UUID,
				}); err != nil {
					return nil, err
				}
			}
			if err := repo.UpsertCentreCounts(ctx, db, g.GenerateCentreCounts(game.UUID, opts.Years)); err != nil {
				return nil, err
			}
			games = append(games, game)
		}
		f.Games = append(f.Games, games)
	}
	return f, nil
}

package scoringdomain

import (
	"math"
	"slices"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
)

// randomGame plays out a plausible game: centres drift between powers year by
// year, eliminated powers stay at zero and a draw is sometimes voted.
func randomGame(f *gofakeit.Faker) Snapshot {
	current := map[GreatPower]int{Austria: 3, England: 3, France: 3, Germany: 3, Italy: 3, Russia: 4, Turkey: 3}
	var counts []CentreCount
	years := f.IntRange(1, 12)
	for y := FirstGameYear; y < FirstGameYear+years; y++ {
		for _, p := range allPowers {
			if current[p] == 0 {
				continue
			}
			current[p] = max(current[p]+f.IntRange(-3, 4), 0)
		}
		counts = append(counts, yearOf(y, current)...)
	}

	snap := Snapshot{Finished: f.Bool(), Counts: counts}
	if f.Bool() {
		h := NewGameHistory(snap)
		powers := h.FinalSurvivors()
		if len(powers) > 0 {
			snap.Proposals = []DrawProposal{{
				Year:   FirstGameYear + years - 1,
				Season: Fall,
				Powers: powers[:f.IntRange(1, len(powers))],
				Status: DrawPassed,
			}}
		}
	}
	return snap
}

func TestGameSystemsProperties(t *testing.T) {
	f := gofakeit.New(20260101)

	for i := 0; i < 200; i++ {
		h := NewGameHistory(randomGame(f))
		for _, sys := range GameSystems() {
			first, err := sys.Score(h)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", sys, err)
			}
			second, _ := sys.Score(h)

			if len(first) != PowerCount {
				t.Fatalf("%s: expected %d entries, got %d", sys, PowerCount, len(first))
			}
			for _, p := range allPowers {
				v := first[p]
				if math.IsNaN(v) || v < 0 {
					t.Fatalf("%s: %s scored %v", sys, p, v)
				}
				if math.Float64bits(v) != math.Float64bits(second[p]) {
					t.Fatalf("%s: %s not idempotent", sys, p)
				}
			}
		}

		assertEqualPositionsScoreEqually(t, h)

		carnage, _ := CentreCountCarnage.Score(h)
		final, ok := h.FinalYear()
		if !ok {
			continue
		}
		counts, _ := h.CentreCounts(final)
		for _, p := range allPowers {
			if carnage[p] != float64(max(counts[p], 0)) {
				t.Fatalf("centre count carnage for %s: want %d, got %v", p, counts[p], carnage[p])
			}
		}
	}
}

// positionKey is everything a game system may look at for one power.
type positionKey struct {
	count  int
	died   int
	dead   bool
	winner bool
}

func assertEqualPositionsScoreEqually(t *testing.T, h *GameHistory) {
	t.Helper()
	s := newGameState(h)
	keyOf := func(p GreatPower) positionKey {
		died, dead := s.died[p]
		return positionKey{count: s.counts[p], died: died, dead: dead, winner: slices.Contains(s.winners, p)}
	}

	for _, sys := range GameSystems() {
		scores, _ := sys.Score(h)
		for i, a := range allPowers {
			for _, b := range allPowers[i+1:] {
				if keyOf(a) != keyOf(b) {
					continue
				}
				if math.Abs(scores[a]-scores[b]) > 1e-9 {
					t.Fatalf("%s: %s and %s share %+v but scored %v and %v", sys, a, b, keyOf(a), scores[a], scores[b])
				}
			}
		}
	}
}

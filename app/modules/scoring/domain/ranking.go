package scoringdomain

import (
	"cmp"
	"slices"
)

// Unranked is the rank given to players excluded from the standings.
const Unranked = 0

// Standing is one line of a ranked table.
type Standing struct {
	Player PlayerID
	Score  float64
	Rank   int
}

// Rank orders players by descending score. Equal scores share a rank and the
// next distinct score skips the shared places (1, 1, 3). Players in unranked
// are listed last with rank Unranked and do not take up a place.
func Rank(scores map[PlayerID]float64, unranked map[PlayerID]bool) []Standing {
	ranked := make([]Standing, 0, len(scores))
	var excluded []Standing
	for p, s := range scores {
		if unranked[p] {
			excluded = append(excluded, Standing{Player: p, Score: s, Rank: Unranked})
			continue
		}
		ranked = append(ranked, Standing{Player: p, Score: s})
	}

	slices.SortFunc(ranked, func(a, b Standing) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Player, b.Player)
	})
	for i := range ranked {
		if i > 0 && ranked[i].Score == ranked[i-1].Score {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}

	slices.SortFunc(excluded, func(a, b Standing) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Player, b.Player)
	})
	return append(ranked, excluded...)
}

// GameResult is one player's finish in one game.
type GameResult struct {
	Game    string
	Player  PlayerID
	Power   GreatPower
	Score   float64
	Centres int
}

// BestCountries groups results by power, best first. When byCentres is set
// the final centre count orders results and score breaks ties; otherwise the
// score orders them and centres break ties.
func BestCountries(results []GameResult, byCentres bool) map[GreatPower][]GameResult {
	out := make(map[GreatPower][]GameResult, PowerCount)
	for _, p := range allPowers {
		out[p] = nil
	}
	for _, r := range results {
		if r.Power.Valid() {
			out[r.Power] = append(out[r.Power], r)
		}
	}
	for p, rs := range out {
		slices.SortStableFunc(rs, func(a, b GameResult) int {
			byScore := cmp.Compare(b.Score, a.Score)
			byDots := cmp.Compare(b.Centres, a.Centres)
			if byCentres {
				return cmp.Or(byDots, byScore)
			}
			return cmp.Or(byScore, byDots)
		})
		out[p] = rs
	}
	return out
}

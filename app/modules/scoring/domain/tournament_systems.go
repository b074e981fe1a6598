package scoringdomain

import (
	"cmp"
	"slices"
)

// TournamentSystem is the persisted name of a tournament scoring policy.
type TournamentSystem string

const (
	SumAllRounds TournamentSystem = "Sum all round scores"
	SumBest2     TournamentSystem = "Sum best 2 rounds"
	SumBest3     TournamentSystem = "Sum best 3 rounds"
	SumBest4     TournamentSystem = "Sum best 4 rounds"
)

// bestOf is the number of rounds counted; 0 counts every round.
var tournamentSystems = map[TournamentSystem]int{
	SumAllRounds: 0,
	SumBest2:     2,
	SumBest3:     3,
	SumBest4:     4,
}

// RoundScore is a player's result in one round of a tournament. A round the
// player did not enter has Played false and is never counted, which differs
// from a round played for a score of 0.
type RoundScore struct {
	Round  int
	Score  float64
	Played bool
}

// PlayedRound records a score for a round the player took part in.
func PlayedRound(round int, score float64) RoundScore {
	return RoundScore{Round: round, Score: score, Played: true}
}

// SkippedRound records a round the player did not enter.
func SkippedRound(round int) RoundScore {
	return RoundScore{Round: round}
}

// TournamentScores maps each player to their tournament total.
type TournamentScores map[PlayerID]float64

// TournamentSystems lists every registered tournament system, sorted by name.
func TournamentSystems() []TournamentSystem {
	out := make([]TournamentSystem, 0, len(tournamentSystems))
	for s := range tournamentSystems {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// ParseTournamentSystem resolves a persisted name.
func ParseTournamentSystem(name string) (TournamentSystem, error) {
	s := TournamentSystem(name)
	if _, ok := tournamentSystems[s]; !ok {
		return "", &UnknownSystemError{Kind: KindTournament, Name: name}
	}
	return s, nil
}

// RoundsCounted returns how many rounds count towards the total, 0 meaning all.
func (s TournamentSystem) RoundsCounted() int {
	return tournamentSystems[s]
}

// Total combines one player's round scores.
func (s TournamentSystem) Total(rounds []RoundScore) float64 {
	played := make([]float64, 0, len(rounds))
	for _, r := range rounds {
		if r.Played {
			played = append(played, r.Score)
		}
	}
	if n := s.RoundsCounted(); n > 0 && len(played) > n {
		slices.SortFunc(played, func(a, b float64) int { return cmp.Compare(b, a) })
		played = played[:n]
	}
	var total float64
	for _, v := range played {
		total += v
	}
	return total
}

// Score totals every player's rounds.
func (s TournamentSystem) Score(rounds map[PlayerID][]RoundScore) (TournamentScores, error) {
	if _, ok := tournamentSystems[s]; !ok {
		return nil, &UnknownSystemError{Kind: KindTournament, Name: string(s)}
	}
	out := make(TournamentScores, len(rounds))
	for p, rs := range rounds {
		out[p] = s.Total(rs)
	}
	return out, nil
}

// ScoreTournament scores a tournament under the named system.
func ScoreTournament(rounds map[PlayerID][]RoundScore, name string) (TournamentScores, error) {
	s, err := ParseTournamentSystem(name)
	if err != nil {
		return nil, err
	}
	return s.Score(rounds)
}

package scoringdomain

import (
	"math"
	"slices"
)

// GameSystem is the persisted name of a game scoring policy.
type GameSystem string

const (
	SoloOrBust              GameSystem = "Solo or bust"
	DrawSize                GameSystem = "Draw size"
	CentreCountCarnage      GameSystem = "Center-count Carnage"
	CarnageEliminationOrder GameSystem = "Carnage with elimination order"
	CarnageDeadEqual        GameSystem = "Carnage with dead equal"
	CDiplo100               GameSystem = "CDiplo 100"
	CDiplo80                GameSystem = "CDiplo 80"
	SumOfSquares            GameSystem = "Sum of Squares"
	ManorCon                GameSystem = "ManorCon"
	OriginalManorCon        GameSystem = "Original ManorCon"
	ManorConV2              GameSystem = "ManorCon v2"
	Tribute                 GameSystem = "Tribute"
	Whipping                GameSystem = "Whipping"
	Bangkok                 GameSystem = "Bangkok"
	Detour09                GameSystem = "Detour09"
	Maxonian                GameSystem = "Maxonian"
	OMG                     GameSystem = "OMG"
	WorldClassic            GameSystem = "World Classic"
)

// GameScores maps every great power to its score in one game.
type GameScores map[GreatPower]float64

// Total sums the scores of all powers.
func (g GameScores) Total() float64 {
	var total float64
	for _, p := range allPowers {
		total += g[p]
	}
	return total
}

type gameScorer func(s gameState) GameScores

var gameScorers = map[GameSystem]gameScorer{
	SoloOrBust:              scoreSoloOrBust,
	DrawSize:                scoreDrawSize,
	CentreCountCarnage:      scoreCentreCount,
	CarnageEliminationOrder: scoreCarnage(eliminationOrderKey),
	CarnageDeadEqual:        scoreCarnage(centreCountKey),
	CDiplo100:               scoreCDiplo(100, 1, []float64{38, 14, 7}),
	CDiplo80:                scoreCDiplo(80, 0, []float64{25, 14, 7}),
	SumOfSquares:            scoreSumOfSquares,
	ManorCon:                scoreManorCon,
	OriginalManorCon:        scoreOriginalManorCon,
	ManorConV2:              scoreManorConV2,
	Tribute:                 scoreTribute,
	Whipping:                scoreWhipping,
	Bangkok:                 scoreBangkok,
	Detour09:                scoreDetour09,
	Maxonian:                scoreMaxonian,
	OMG:                     scoreOMG,
	WorldClassic:            scoreWorldClassic,
}

// GameSystems lists every registered game system, sorted by name.
func GameSystems() []GameSystem {
	out := make([]GameSystem, 0, len(gameScorers))
	for s := range gameScorers {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// ParseGameSystem resolves a persisted name. Names must match exactly.
func ParseGameSystem(name string) (GameSystem, error) {
	s := GameSystem(name)
	if _, ok := gameScorers[s]; !ok {
		return "", &UnknownSystemError{Kind: KindGame, Name: name}
	}
	return s, nil
}

// Score applies the system to a game. The result always holds all seven powers.
func (s GameSystem) Score(h *GameHistory) (GameScores, error) {
	scorer, ok := gameScorers[s]
	if !ok {
		return nil, &UnknownSystemError{Kind: KindGame, Name: string(s)}
	}
	return finalise(scorer(newGameState(h))), nil
}

// ScoreGame scores a game under the named system.
func ScoreGame(h *GameHistory, name string) (GameScores, error) {
	s, err := ParseGameSystem(name)
	if err != nil {
		return nil, err
	}
	return s.Score(h)
}

// gameState is the final position every scorer works from.
type gameState struct {
	board     BoardConfig
	finalYear int
	counts    map[GreatPower]int
	died      map[GreatPower]int
	outcome   Outcome
	winners   []GreatPower
}

func newGameState(h *GameHistory) gameState {
	final, ok := h.FinalYear()
	if !ok {
		final = StartYear
	}
	s := gameState{
		board:     h.board,
		finalYear: final,
		counts:    make(map[GreatPower]int, PowerCount),
		died:      make(map[GreatPower]int),
		outcome:   h.Outcome(),
		winners:   h.Winners(),
	}
	for _, p := range allPowers {
		c, _ := h.latestCount(p, final)
		s.counts[p] = max(c, 0)
		if s.counts[p] > 0 {
			continue
		}
		if y, ok := h.EliminationYear(p); ok {
			s.died[p] = y
		} else {
			s.died[p] = final
		}
	}
	return s
}

func (s gameState) alive(p GreatPower) bool {
	_, dead := s.died[p]
	return !dead
}

func (s gameState) survivors() []GreatPower {
	var out []GreatPower
	for _, p := range allPowers {
		if s.alive(p) {
			out = append(out, p)
		}
	}
	return out
}

// soleWinner returns the power a solo or concession went to.
func (s gameState) soleWinner() (GreatPower, bool) {
	if (s.outcome == OutcomeSolo || s.outcome == OutcomeConcession) && len(s.winners) == 1 {
		return s.winners[0], true
	}
	return "", false
}

// yearsSurvived counts completed years before elimination, or all years
// played for a survivor.
func (s gameState) yearsSurvived(p GreatPower) float64 {
	if y, dead := s.died[p]; dead {
		return float64(max(y-FirstGameYear, 0))
	}
	return float64(max(s.finalYear-StartYear, 0))
}

// toppers returns the surviving powers sharing the highest count.
func (s gameState) toppers() []GreatPower {
	best := 0
	var out []GreatPower
	for _, p := range s.survivors() {
		switch c := s.counts[p]; {
		case c > best:
			best = c
			out = []GreatPower{p}
		case c == best:
			out = append(out, p)
		}
	}
	return out
}

func zeroScores() GameScores {
	out := make(GameScores, PowerCount)
	for _, p := range allPowers {
		out[p] = 0
	}
	return out
}

// finalise fills missing powers and clamps to the zero floor.
func finalise(scores GameScores) GameScores {
	out := zeroScores()
	for _, p := range allPowers {
		v := scores[p]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		out[p] = v
	}
	return out
}

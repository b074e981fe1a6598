package scoringdomain

import (
	"cmp"
	"slices"
)

// Published constants for each system.
const (
	soloOrBustWin   = 35 * 100
	drawSizePool    = 100
	manorConSolo    = 75
	tributePool     = 100
	tributeShare    = 66
	whippingSurvive = 3
	whippingTopper  = 10
	bangkokSurvive  = 10
	detourCentres   = 60
	detourSurvive   = 40
	maxonianSolo    = 10
	omgPerCentre    = 1.5
	omgSurvive      = 4
	omgTopper       = 15
	classicSurvive  = 10
	classicTopper   = 10
	defaultSolo     = 100
)

var (
	carnagePoints  = []float64{7000, 6000, 5000, 4000, 3000, 2000, 1000}
	bangkokBonus   = []float64{12, 6, 3}
	maxonianPoints = []float64{7, 6, 5, 4, 3, 2, 1}
)

// rankKey orders powers on the final board; higher is better.
type rankKey struct {
	alive bool
	count int
	died  int
}

func compareRankKeys(a, b rankKey) int {
	if a.alive != b.alive {
		if a.alive {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(a.count, b.count); c != 0 {
		return c
	}
	return cmp.Compare(a.died, b.died)
}

type keyFunc func(s gameState, p GreatPower) rankKey

// centreCountKey ranks by count alone, so every eliminated power ties.
func centreCountKey(s gameState, p GreatPower) rankKey {
	return rankKey{alive: s.alive(p), count: s.counts[p]}
}

// eliminationOrderKey also ranks eliminated powers by year of death, later
// being better. Powers eliminated in the same year tie.
func eliminationOrderKey(s gameState, p GreatPower) rankKey {
	k := centreCountKey(s, p)
	if !k.alive {
		k.died = s.died[p]
	}
	return k
}

// positionPoints hands out points by finishing position. Tied powers share
// the points of the positions they cover equally.
func positionPoints(s gameState, key keyFunc, points []float64) GameScores {
	return positionPointsAmong(s, AllPowers(), key, points)
}

// rankBonus ranks only the powers still on the board; eliminated powers
// take no share of the bonus.
func rankBonus(s gameState, points []float64) GameScores {
	return positionPointsAmong(s, s.survivors(), centreCountKey, points)
}

func positionPointsAmong(s gameState, powers []GreatPower, key keyFunc, points []float64) GameScores {
	slices.SortStableFunc(powers, func(a, b GreatPower) int {
		return compareRankKeys(key(s, b), key(s, a))
	})

	out := zeroScores()
	for i := 0; i < len(powers); {
		j := i + 1
		for j < len(powers) && key(s, powers[j]) == key(s, powers[i]) {
			j++
		}
		var total float64
		for k := i; k < j && k < len(points); k++ {
			total += points[k]
		}
		for k := i; k < j; k++ {
			out[powers[k]] = total / float64(j-i)
		}
		i = j
	}
	return out
}

// winnerTakes gives value to the sole winner and nothing to anyone else.
func winnerTakes(p GreatPower, value float64) GameScores {
	out := zeroScores()
	out[p] = value
	return out
}

func (s gameState) shareAmongToppers(out GameScores, pool float64) {
	toppers := s.toppers()
	for _, p := range toppers {
		out[p] += pool / float64(len(toppers))
	}
}

func scoreSoloOrBust(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, soloOrBustWin)
	}
	return scoreCentreCount(s)
}

func scoreDrawSize(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, drawSizePool)
	}
	if s.outcome == OutcomeDraw {
		out := zeroScores()
		for _, p := range s.winners {
			out[p] = drawSizePool / float64(len(s.winners))
		}
		return out
	}
	return scoreCentreCount(s)
}

func scoreCentreCount(s gameState) GameScores {
	out := zeroScores()
	for _, p := range allPowers {
		out[p] = float64(s.counts[p])
	}
	return out
}

func scoreCarnage(key keyFunc) gameScorer {
	return func(s gameState) GameScores {
		if w, ok := s.soleWinner(); ok {
			var all float64
			for _, v := range carnagePoints {
				all += v
			}
			return winnerTakes(w, all+float64(s.board.TotalCentres))
		}
		out := positionPoints(s, key, carnagePoints)
		for _, p := range allPowers {
			out[p] += float64(s.counts[p])
		}
		return out
	}
}

func scoreCDiplo(pool, participation float64, bonus []float64) gameScorer {
	return func(s gameState) GameScores {
		if w, ok := s.soleWinner(); ok {
			return winnerTakes(w, pool)
		}
		out := rankBonus(s, bonus)
		for _, p := range allPowers {
			out[p] += participation + float64(s.counts[p])
		}
		return out
	}
}

func scoreSumOfSquares(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, defaultSolo)
	}
	var squares float64
	for _, p := range allPowers {
		squares += float64(s.counts[p] * s.counts[p])
	}
	out := zeroScores()
	if squares == 0 {
		return out
	}
	for _, p := range allPowers {
		out[p] = 100 * float64(s.counts[p]*s.counts[p]) / squares
	}
	return out
}

func manorConTerm(c int) float64 {
	return float64(c*c + 4*c + 16)
}

// manorConShare splits 100 points among powers in proportion to c²+4c+16.
func manorConShare(s gameState, powers []GreatPower) GameScores {
	var total float64
	for _, p := range powers {
		total += manorConTerm(s.counts[p])
	}
	out := zeroScores()
	for _, p := range powers {
		out[p] = 100 * manorConTerm(s.counts[p]) / total
	}
	return out
}

func scoreManorCon(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, manorConSolo)
	}
	return manorConShare(s, allPowers[:])
}

func scoreManorConV2(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, manorConSolo)
	}
	return manorConShare(s, s.survivors())
}

func scoreOriginalManorCon(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, manorConSolo)
	}
	out := manorConShare(s, s.survivors())
	for p := range s.died {
		out[p] = s.yearsSurvived(p)
	}
	return out
}

// scoreTribute gives each survivor its centres plus an equal slice of the
// participation share. A sole board topper then collects tribute from every
// other survivor equal to its lead over the runner-up.
func scoreTribute(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, tributePool)
	}
	survivors := s.survivors()
	out := zeroScores()
	for _, p := range survivors {
		out[p] = float64(s.counts[p]) + tributeShare/float64(len(survivors))
	}

	toppers := s.toppers()
	if len(toppers) != 1 {
		return out
	}
	top := toppers[0]
	runnerUp := 0
	for _, p := range survivors {
		if p != top {
			runnerUp = max(runnerUp, s.counts[p])
		}
	}
	lead := float64(s.counts[top] - runnerUp)
	for _, p := range survivors {
		if p == top {
			continue
		}
		paid := min(lead, out[p])
		out[p] -= paid
		out[top] += paid
	}
	return out
}

func scoreWhipping(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, defaultSolo)
	}
	out := zeroScores()
	for _, p := range s.survivors() {
		out[p] = float64(s.counts[p]) + whippingSurvive
	}
	s.shareAmongToppers(out, whippingTopper)
	return out
}

func scoreBangkok(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, defaultSolo)
	}
	out := rankBonus(s, bangkokBonus)
	for _, p := range s.survivors() {
		out[p] += bangkokSurvive + float64(s.counts[p])
	}
	return out
}

func scoreDetour09(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, defaultSolo)
	}
	survivors := s.survivors()
	held := 0
	for _, p := range survivors {
		held += s.counts[p]
	}
	out := zeroScores()
	for _, p := range survivors {
		out[p] = detourSurvive / float64(len(survivors))
		if held > 0 {
			out[p] += detourCentres * float64(s.counts[p]) / float64(held)
		}
	}
	return out
}

func scoreMaxonian(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, maxonianSolo)
	}
	return positionPoints(s, eliminationOrderKey, maxonianPoints)
}

func scoreOMG(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, defaultSolo)
	}
	out := zeroScores()
	for _, p := range s.survivors() {
		out[p] = omgPerCentre*float64(s.counts[p]) + omgSurvive
	}
	s.shareAmongToppers(out, omgTopper)
	return out
}

func scoreWorldClassic(s gameState) GameScores {
	if w, ok := s.soleWinner(); ok {
		return winnerTakes(w, defaultSolo)
	}
	out := zeroScores()
	for _, p := range s.survivors() {
		out[p] = classicSurvive + float64(s.counts[p])
	}
	for p := range s.died {
		out[p] = s.yearsSurvived(p)
	}
	s.shareAmongToppers(out, classicTopper)
	return out
}

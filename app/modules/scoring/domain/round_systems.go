package scoringdomain

import (
	"maps"
	"slices"
)

// PlayerID identifies a tournament player.
type PlayerID string

// RoundSystem is the persisted name of a round scoring policy.
type RoundSystem string

const (
	AddAllGameScores        RoundSystem = "Add all game scores"
	BestGameCounts          RoundSystem = "Best game counts"
	BestGameSitterBonus     RoundSystem = "Best game counts. Sitters get 4005"
	BestGameSitterBonusOnce RoundSystem = "Best game counts. Sitters get 4005 once"
)

// SitterBonus is added to the round score of a qualifying sitter.
const SitterBonus = 4005

// RoundEntry is one player's participation in a round.
type RoundEntry struct {
	Player     PlayerID
	GameScores []float64
	// SatOut marks a player asked by the director to sit out the round.
	SatOut bool
}

// Sitter reports whether the entry qualifies for the sitter bonus: the player
// either covered more than one board or was asked to sit out.
func (e RoundEntry) Sitter() bool {
	return e.SatOut || len(e.GameScores) > 1
}

// SitterContext records which players already received a sitter bonus
// earlier in the tournament.
type SitterContext struct {
	rewarded map[PlayerID]struct{}
}

// NewSitterContext starts a context with the given players already rewarded.
func NewSitterContext(rewarded ...PlayerID) SitterContext {
	c := SitterContext{rewarded: make(map[PlayerID]struct{}, len(rewarded))}
	for _, p := range rewarded {
		c.rewarded[p] = struct{}{}
	}
	return c
}

// HasReceivedBonus reports whether p was already given the bonus.
func (c SitterContext) HasReceivedBonus(p PlayerID) bool {
	_, ok := c.rewarded[p]
	return ok
}

// WithRewarded returns a copy of c that also includes players.
func (c SitterContext) WithRewarded(players ...PlayerID) SitterContext {
	next := SitterContext{rewarded: maps.Clone(c.rewarded)}
	if next.rewarded == nil {
		next.rewarded = make(map[PlayerID]struct{}, len(players))
	}
	for _, p := range players {
		next.rewarded[p] = struct{}{}
	}
	return next
}

// Rewarded lists the players in the context, sorted.
func (c SitterContext) Rewarded() []PlayerID {
	return slices.Sorted(maps.Keys(c.rewarded))
}

// RoundScores maps each player to their round score.
type RoundScores map[PlayerID]float64

var roundSystems = []RoundSystem{
	AddAllGameScores,
	BestGameCounts,
	BestGameSitterBonus,
	BestGameSitterBonusOnce,
}

// RoundSystems lists every registered round system.
func RoundSystems() []RoundSystem {
	return slices.Clone(roundSystems)
}

// ParseRoundSystem resolves a persisted name.
func ParseRoundSystem(name string) (RoundSystem, error) {
	s := RoundSystem(name)
	if !slices.Contains(roundSystems, s) {
		return "", &UnknownSystemError{Kind: KindRound, Name: name}
	}
	return s, nil
}

// bonusFor reports whether e earns the sitter bonus under s.
func (s RoundSystem) bonusFor(e RoundEntry, sitters SitterContext) bool {
	switch s {
	case BestGameSitterBonus:
		return e.Sitter()
	case BestGameSitterBonusOnce:
		return e.Sitter() && !sitters.HasReceivedBonus(e.Player)
	default:
		return false
	}
}

// BonusRecipients returns the players awarded the sitter bonus in this round.
func (s RoundSystem) BonusRecipients(entries []RoundEntry, sitters SitterContext) []PlayerID {
	var out []PlayerID
	for _, e := range entries {
		if s.bonusFor(e, sitters) {
			out = append(out, e.Player)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Score combines each entry's game scores into one round score.
// Players with no games score 0 unless they earn the sitter bonus.
func (s RoundSystem) Score(entries []RoundEntry, sitters SitterContext) (RoundScores, error) {
	if !slices.Contains(roundSystems, s) {
		return nil, &UnknownSystemError{Kind: KindRound, Name: string(s)}
	}
	out := make(RoundScores, len(entries))
	for _, e := range entries {
		var score float64
		switch s {
		case AddAllGameScores:
			for _, g := range e.GameScores {
				score += g
			}
		default:
			if len(e.GameScores) > 0 {
				score = slices.Max(e.GameScores)
			}
		}
		if s.bonusFor(e, sitters) {
			score += SitterBonus
		}
		out[e.Player] += score
	}
	return out, nil
}

// ScoreRound scores a round under the named system.
func ScoreRound(entries []RoundEntry, name string, sitters SitterContext) (RoundScores, error) {
	s, err := ParseRoundSystem(name)
	if err != nil {
		return nil, err
	}
	return s.Score(entries, sitters)
}

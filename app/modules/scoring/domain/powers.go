package scoringdomain

import (
	"fmt"
	"slices"
	"strings"
)

// GreatPower is one of the seven fixed powers on a standard Diplomacy board.
type GreatPower string

const (
	Austria GreatPower = "Austria"
	England GreatPower = "England"
	France  GreatPower = "France"
	Germany GreatPower = "Germany"
	Italy   GreatPower = "Italy"
	Russia  GreatPower = "Russia"
	Turkey  GreatPower = "Turkey"
)

// PowerCount is the number of great powers in every game.
const PowerCount = 7

var allPowers = [PowerCount]GreatPower{Austria, England, France, Germany, Italy, Russia, Turkey}

var abbreviations = map[GreatPower]string{
	Austria: "A",
	England: "E",
	France:  "F",
	Germany: "G",
	Italy:   "I",
	Russia:  "R",
	Turkey:  "T",
}

// AllPowers returns the seven powers in canonical order.
func AllPowers() []GreatPower {
	return slices.Clone(allPowers[:])
}

// Valid reports whether p is one of the seven great powers.
func (p GreatPower) Valid() bool {
	_, ok := abbreviations[p]
	return ok
}

// Abbreviation returns the single-letter abbreviation, or "" for an unknown power.
func (p GreatPower) Abbreviation() string {
	return abbreviations[p]
}

func (p GreatPower) String() string {
	return string(p)
}

// ParsePower accepts a power name or abbreviation, case-insensitively.
func ParsePower(s string) (GreatPower, error) {
	s = strings.TrimSpace(s)
	for _, p := range allPowers {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, abbreviations[p]) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPower, s)
}

// sortPowers orders powers canonically in place.
func sortPowers(ps []GreatPower) {
	slices.SortFunc(ps, func(a, b GreatPower) int {
		return slices.Index(allPowers[:], a) - slices.Index(allPowers[:], b)
	})
}

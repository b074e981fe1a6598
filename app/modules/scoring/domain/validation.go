package scoringdomain

import (
	"errors"
	"fmt"
)

// ValidateSnapshot reports every consistency problem in a history. Scoring
// never calls it; policies work from whatever data they are given. When dias
// is set, passed proposals must contain exactly the surviving powers.
func ValidateSnapshot(h *GameHistory, dias bool) error {
	var errs []error

	for _, y := range h.years {
		owned := 0
		soloers := 0
		for _, p := range allPowers {
			c, ok := h.counts[y][p]
			if !ok {
				continue
			}
			if c < 0 || c > h.board.TotalCentres {
				errs = append(errs, fmt.Errorf("%w: %s has %d in %d", ErrCentreCountOutOfRange, p, c, y))
			}
			if died, ok := h.EliminationYear(p); ok && died < y && c > 0 {
				errs = append(errs, fmt.Errorf("%w: %s in %d", ErrResurrection, p, y))
			}
			if c >= h.board.SoloThreshold {
				soloers++
			}
			owned += max(c, 0)
		}
		if owned > h.board.TotalCentres {
			errs = append(errs, fmt.Errorf("%w: %d of %d in %d", ErrBoardOverflow, owned, h.board.TotalCentres, y))
		}
		if soloers > 1 {
			errs = append(errs, fmt.Errorf("%w in %d", ErrMultipleSoloers, y))
		}
	}

	passed := 0
	for _, d := range h.proposals {
		if d.Status != DrawPassed {
			continue
		}
		passed++
		for _, p := range d.Powers {
			if died, ok := h.EliminationYear(p); ok && died < d.Year {
				errs = append(errs, fmt.Errorf("%w: %s in %d", ErrDrawIncludesEliminated, p, d.Year))
			}
		}
		if dias {
			for _, p := range h.DIASPowers(d.Year) {
				if !d.Includes(p) {
					errs = append(errs, fmt.Errorf("%w: %s in %d", ErrDrawExcludesSurvivor, p, d.Year))
				}
			}
		}
	}
	if passed > 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrMultiplePassedDraws, passed))
	}

	return errors.Join(errs...)
}

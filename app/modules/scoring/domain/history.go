package scoringdomain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// StartYear is the notional year before the first move.
	StartYear = 1900
	// FirstGameYear is the earliest year that can carry centre counts.
	FirstGameYear = 1901
)

// Season of a draw vote.
type Season string

const (
	Spring Season = "S"
	Fall   Season = "F"
)

// ParseSeason accepts "S", "F", "Spring" or "Fall", case-insensitively.
func ParseSeason(s string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "spring":
		return Spring, nil
	case "f", "fall", "autumn":
		return Fall, nil
	}
	return "", fmt.Errorf("%w: season %q", ErrInvalidDrawProposal, s)
}

func (s Season) order() int {
	if s == Fall {
		return 1
	}
	return 0
}

// DrawStatus is the state of a draw vote.
type DrawStatus string

const (
	DrawPending DrawStatus = "pending"
	DrawPassed  DrawStatus = "passed"
	DrawFailed  DrawStatus = "failed"
)

// ParseDrawStatus accepts a status name; an empty string is pending.
func ParseDrawStatus(s string) (DrawStatus, error) {
	switch st := DrawStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return DrawPending, nil
	case DrawPending, DrawPassed, DrawFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: status %q", ErrInvalidDrawProposal, s)
}

// CentreCount is the number of supply centres a power held at the end of a year.
type CentreCount struct {
	Power GreatPower
	Year  int
	Count int
}

// DrawProposal is a vote to end the game shared among Powers.
type DrawProposal struct {
	Year          int
	Season        Season
	Powers        []GreatPower
	Status        DrawStatus
	VotesInFavour int
	VotesAgainst  int
}

// Size is the number of powers sharing the proposed draw.
func (d DrawProposal) Size() int {
	return len(d.Powers)
}

// Includes reports whether p is part of the proposal.
func (d DrawProposal) Includes(p GreatPower) bool {
	return slices.Contains(d.Powers, p)
}

// IsConcession reports whether the proposal hands the game to a single power.
func (d DrawProposal) IsConcession() bool {
	return d.Size() == 1
}

func compareProposals(a, b DrawProposal) int {
	if a.Year != b.Year {
		return a.Year - b.Year
	}
	return a.Season.order() - b.Season.order()
}

// BoardConfig describes the map a game is played on.
type BoardConfig struct {
	TotalCentres  int `yaml:"total_centres" json:"total_centres"`
	SoloThreshold int `yaml:"solo_threshold" json:"solo_threshold"`
}

// StandardBoard is the classic 34 centre map with an 18 centre solo.
var StandardBoard = BoardConfig{TotalCentres: 34, SoloThreshold: 18}

func (b BoardConfig) withDefaults() BoardConfig {
	if b.TotalCentres <= 0 {
		b.TotalCentres = StandardBoard.TotalCentres
	}
	if b.SoloThreshold <= 0 {
		b.SoloThreshold = b.TotalCentres/2 + 1
	}
	return b
}

// Outcome classifies how a game stands.
type Outcome string

const (
	OutcomeOngoing    Outcome = "ongoing"
	OutcomeSolo       Outcome = "solo"
	OutcomeDraw       Outcome = "draw"
	OutcomeConcession Outcome = "concession"
	OutcomeCarnage    Outcome = "carnage"
)

// Snapshot is the raw data a GameHistory is built from.
type Snapshot struct {
	Board     BoardConfig
	Finished  bool
	Counts    []CentreCount
	Proposals []DrawProposal
}

// GameHistory is a read-only view over one game's recorded years.
type GameHistory struct {
	board     BoardConfig
	finished  bool
	years     []int
	counts    map[int]map[GreatPower]int
	proposals []DrawProposal
}

// NewGameHistory indexes a snapshot. Counts for unknown powers are ignored
// and a repeated (power, year) keeps the last value given.
func NewGameHistory(s Snapshot) *GameHistory {
	h := &GameHistory{
		board:    s.Board.withDefaults(),
		finished: s.Finished,
		counts:   make(map[int]map[GreatPower]int),
	}
	for _, cc := range s.Counts {
		if !cc.Power.Valid() {
			continue
		}
		byPower, ok := h.counts[cc.Year]
		if !ok {
			byPower = make(map[GreatPower]int, PowerCount)
			h.counts[cc.Year] = byPower
		}
		byPower[cc.Power] = cc.Count
	}
	h.years = slices.Sorted(maps.Keys(h.counts))

	h.proposals = slices.Clone(s.Proposals)
	slices.SortStableFunc(h.proposals, compareProposals)
	return h
}

// Board returns the board the game is played on.
func (h *GameHistory) Board() BoardConfig {
	return h.board
}

// Finished reports whether the game has been declared over.
func (h *GameHistory) Finished() bool {
	return h.finished
}

// YearsPlayed returns the years with data, ascending.
func (h *GameHistory) YearsPlayed() []int {
	return slices.Clone(h.years)
}

// FinalYear returns the last year with data.
func (h *GameHistory) FinalYear() (int, bool) {
	if len(h.years) == 0 {
		return 0, false
	}
	return h.years[len(h.years)-1], true
}

// Proposals returns every draw proposal in chronological order.
func (h *GameHistory) Proposals() []DrawProposal {
	return slices.Clone(h.proposals)
}

func checkYear(year int) error {
	if year < FirstGameYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

// CentreCounts returns the per-power counts at the end of year.
// A power missing from the year but eliminated earlier is reported as 0;
// any other missing power is unknown and left out of the map.
func (h *GameHistory) CentreCounts(year int) (map[GreatPower]int, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	recorded, ok := h.counts[year]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrNoCentreCountData, year)
	}
	out := make(map[GreatPower]int, PowerCount)
	for _, p := range allPowers {
		if c, ok := recorded[p]; ok {
			out[p] = c
			continue
		}
		if died, ok := h.EliminationYear(p); ok && died < year {
			out[p] = 0
		}
	}
	return out, nil
}

// EliminationYear returns the first year p is recorded with no centres.
func (h *GameHistory) EliminationYear(p GreatPower) (int, bool) {
	for _, y := range h.years {
		if c, ok := h.counts[y][p]; ok && c <= 0 {
			return y, true
		}
	}
	return 0, false
}

// clampYear maps a year beyond the data onto the final year.
func (h *GameHistory) clampYear(year int) int {
	if final, ok := h.FinalYear(); ok && year > final {
		return final
	}
	return year
}

// Survivors returns the powers holding centres in year. Years after the
// last recorded one use the final state.
func (h *GameHistory) Survivors(year int) ([]GreatPower, error) {
	counts, err := h.CentreCounts(h.clampYear(year))
	if err != nil {
		return nil, err
	}
	var out []GreatPower
	for _, p := range allPowers {
		if counts[p] > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// FinalSurvivors returns the powers alive in the last recorded year, or
// every power if nothing has been recorded yet.
func (h *GameHistory) FinalSurvivors() []GreatPower {
	final, ok := h.FinalYear()
	if !ok {
		return AllPowers()
	}
	survivors, _ := h.Survivors(final)
	return survivors
}

// Neutrals returns the unowned centres at the end of year, never below zero.
func (h *GameHistory) Neutrals(year int) (int, error) {
	counts, err := h.CentreCounts(year)
	if err != nil {
		return 0, err
	}
	owned := 0
	for _, c := range counts {
		owned += max(c, 0)
	}
	return max(h.board.TotalCentres-owned, 0), nil
}

// BoardToppers returns the powers sharing the highest count in year.
func (h *GameHistory) BoardToppers(year int) ([]GreatPower, error) {
	counts, err := h.CentreCounts(h.clampYear(year))
	if err != nil {
		return nil, err
	}
	best := 0
	var out []GreatPower
	for _, p := range allPowers {
		c := counts[p]
		switch {
		case c <= 0 || c < best:
		case c > best:
			best = c
			out = []GreatPower{p}
		default:
			out = append(out, p)
		}
	}
	return out, nil
}

// Soloer returns the power that reached the solo threshold. The earliest year
// with a single power over the threshold decides.
func (h *GameHistory) Soloer() (GreatPower, bool) {
	for _, y := range h.years {
		var (
			winner GreatPower
			best   = -1
			tied   bool
		)
		for _, p := range allPowers {
			c, ok := h.counts[y][p]
			if !ok || c < h.board.SoloThreshold {
				continue
			}
			switch {
			case c > best:
				winner, best, tied = p, c, false
			case c == best:
				tied = true
			}
		}
		if best >= 0 && !tied {
			return winner, true
		}
	}
	return "", false
}

// PassedDraw returns the most recent passed proposal.
func (h *GameHistory) PassedDraw() (DrawProposal, bool) {
	for i := len(h.proposals) - 1; i >= 0; i-- {
		if h.proposals[i].Status == DrawPassed {
			return h.proposals[i], true
		}
	}
	return DrawProposal{}, false
}

// Outcome classifies the game. A solo outranks any recorded draw.
func (h *GameHistory) Outcome() Outcome {
	if _, ok := h.Soloer(); ok {
		return OutcomeSolo
	}
	if d, ok := h.PassedDraw(); ok {
		if d.IsConcession() {
			return OutcomeConcession
		}
		return OutcomeDraw
	}
	if h.finished {
		return OutcomeCarnage
	}
	return OutcomeOngoing
}

// Winners returns the soloer, the power conceded to, or the drawing powers.
func (h *GameHistory) Winners() []GreatPower {
	if p, ok := h.Soloer(); ok {
		return []GreatPower{p}
	}
	if d, ok := h.PassedDraw(); ok {
		out := slices.Clone(d.Powers)
		sortPowers(out)
		return slices.Compact(out)
	}
	return nil
}

// ResultSummary describes how the game ended, or "" while it is still going.
func (h *GameHistory) ResultSummary() string {
	switch h.Outcome() {
	case OutcomeSolo:
		return "Game won by " + string(h.Winners()[0])
	case OutcomeConcession:
		return "Game conceded to " + string(h.Winners()[0])
	case OutcomeDraw:
		names := make([]string, 0, PowerCount)
		for _, p := range h.Winners() {
			names = append(names, string(p))
		}
		return fmt.Sprintf("Vote passed to include %s", strings.Join(names, ", "))
	case OutcomeCarnage:
		return "Game ended without a solo or draw"
	default:
		return ""
	}
}

// DIASPowers returns the powers a draw-includes-all-survivors vote in year
// must contain: the survivors of the latest recorded year before it.
func (h *GameHistory) DIASPowers(year int) []GreatPower {
	for i := len(h.years) - 1; i >= 0; i-- {
		if h.years[i] < year {
			survivors, _ := h.Survivors(h.years[i])
			return survivors
		}
	}
	return AllPowers()
}

// latestCount is the most recent count for p up to and including year.
func (h *GameHistory) latestCount(p GreatPower, year int) (int, bool) {
	for i := len(h.years) - 1; i >= 0; i-- {
		y := h.years[i]
		if y > year {
			continue
		}
		if c, ok := h.counts[y][p]; ok {
			return c, true
		}
	}
	return 0, false
}

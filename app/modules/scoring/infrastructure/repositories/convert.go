package scoringdb

import (
	"fmt"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
)

// Board returns the board configuration a tournament is played on.
func (t *Tournament) Board() scoringdomain.BoardConfig {
	return scoringdomain.BoardConfig{
		TotalCentres:  t.TotalCentres,
		SoloThreshold: t.SoloThreshold,
	}
}

// ToSnapshot builds the domain snapshot of a game from its stored rows.
func ToSnapshot(board scoringdomain.BoardConfig, g *Game, counts []CentreCount, proposals []DrawProposal) (scoringdomain.Snapshot, error) {
	s := scoringdomain.Snapshot{
		Board:     board,
		Finished:  g.Finished,
		Counts:    make([]scoringdomain.CentreCount, 0, len(counts)),
		Proposals: make([]scoringdomain.DrawProposal, 0, len(proposals)),
	}
	for _, c := range counts {
		p, err := scoringdomain.ParsePower(c.Power)
		if err != nil {
			return s, fmt.Errorf("game %s: %w", g.UUID, err)
		}
		s.Counts = append(s.Counts, scoringdomain.CentreCount{Power: p, Year: c.Year, Count: c.Count})
	}
	for _, d := range proposals {
		powers := make([]scoringdomain.GreatPower, 0, len(d.Powers))
		for _, name := range d.Powers {
			p, err := scoringdomain.ParsePower(name)
			if err != nil {
				return s, fmt.Errorf("game %s draw %d: %w", g.UUID, d.ID, err)
			}
			powers = append(powers, p)
		}
		s.Proposals = append(s.Proposals, scoringdomain.DrawProposal{
			Year:          d.Year,
			Season:        scoringdomain.Season(d.Season),
			Powers:        powers,
			Status:        scoringdomain.DrawStatus(d.Status),
			VotesInFavour: d.VotesInFavour,
			VotesAgainst:  d.VotesAgainst,
		})
	}
	return s, nil
}

// FromCentreCounts converts domain counts to rows for a game.
func FromCentreCounts(g *Game, counts []scoringdomain.CentreCount) []CentreCount {
	rows := make([]CentreCount, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, CentreCount{
			GameUUID: g.UUID,
			Power:    c.Power.String(),
			Year:     c.Year,
			Count:    c.Count,
		})
	}
	return rows
}

// FromDrawProposal converts a domain proposal to a row for a game.
func FromDrawProposal(g *Game, d scoringdomain.DrawProposal) *DrawProposal {
	powers := make([]string, 0, len(d.Powers))
	for _, p := range d.Powers {
		powers = append(powers, p.String())
	}
	return &DrawProposal{
		GameUUID:      g.UUID,
		Year:          d.Year,
		Season:        string(d.Season),
		Powers:        powers,
		Status:        string(d.Status),
		VotesInFavour: d.VotesInFavour,
		VotesAgainst:  d.VotesAgainst,
	}
}

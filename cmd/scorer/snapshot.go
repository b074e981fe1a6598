package main

import (
	"fmt"
	"os"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	"gopkg.in/yaml.v3"
)

// gameFile is the YAML form of a game snapshot.
type gameFile struct {
	Board    scoringdomain.BoardConfig `yaml:"board"`
	Finished bool                      `yaml:"finished"`
	// Centres maps year to power name to count.
	Centres map[int]map[string]int `yaml:"centres"`
	Draws   []drawEntry            `yaml:"draws"`
}

type drawEntry struct {
	Year          int      `yaml:"year"`
	Season        string   `yaml:"season"`
	Powers        []string `yaml:"powers"`
	Status        string   `yaml:"status"`
	VotesInFavour int      `yaml:"votes_in_favour"`
	VotesAgainst  int      `yaml:"votes_against"`
}

func loadSnapshot(path string) (scoringdomain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scoringdomain.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return parseSnapshot(data)
}

func parseSnapshot(data []byte) (scoringdomain.Snapshot, error) {
	var f gameFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return scoringdomain.Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	s := scoringdomain.Snapshot{Board: f.Board, Finished: f.Finished}
	for year, byPower := range f.Centres {
		if year < scoringdomain.FirstGameYear {
			return scoringdomain.Snapshot{}, fmt.Errorf("%w: %d", scoringdomain.ErrInvalidYear, year)
		}
		for name, count := range byPower {
			p, err := scoringdomain.ParsePower(name)
			if err != nil {
				return scoringdomain.Snapshot{}, err
			}
			s.Counts = append(s.Counts, scoringdomain.CentreCount{Power: p, Year: year, Count: count})
		}
	}

	for _, d := range f.Draws {
		season, err := scoringdomain.ParseSeason(d.Season)
		if err != nil {
			return scoringdomain.Snapshot{}, err
		}
		status, err := scoringdomain.ParseDrawStatus(d.Status)
		if err != nil {
			return scoringdomain.Snapshot{}, err
		}
		powers := make([]scoringdomain.GreatPower, 0, len(d.Powers))
		for _, name := range d.Powers {
			p, err := scoringdomain.ParsePower(name)
			if err != nil {
				return scoringdomain.Snapshot{}, err
			}
			powers = append(powers, p)
		}
		s.Proposals = append(s.Proposals, scoringdomain.DrawProposal{
			Year:          d.Year,
			Season:        season,
			Powers:        powers,
			Status:        status,
			VotesInFavour: d.VotesInFavour,
			VotesAgainst:  d.VotesAgainst,
		})
	}
	return s, nil
}

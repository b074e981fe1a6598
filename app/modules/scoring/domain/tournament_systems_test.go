package scoringdomain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScoreTournament(t *testing.T) {
	rounds := map[PlayerID][]RoundScore{
		"every round": {PlayedRound(1, 34), PlayedRound(2, 56), PlayedRound(3, 12)},
		"skipped two": {PlayedRound(1, 34), SkippedRound(2), PlayedRound(3, 12)},
		"scored zero": {PlayedRound(1, 34), PlayedRound(2, 0), PlayedRound(3, 12)},
		"never came":  {SkippedRound(1), SkippedRound(2), SkippedRound(3)},
	}

	tests := []struct {
		system string
		want   TournamentScores
	}{
		{
			system: "Sum all round scores",
			want:   TournamentScores{"every round": 102, "skipped two": 46, "scored zero": 46, "never came": 0},
		},
		{
			system: "Sum best 2 rounds",
			want:   TournamentScores{"every round": 90, "skipped two": 46, "scored zero": 46, "never came": 0},
		},
		{
			system: "Sum best 3 rounds",
			want:   TournamentScores{"every round": 102, "skipped two": 46, "scored zero": 46, "never came": 0},
		},
		{
			system: "Sum best 4 rounds",
			want:   TournamentScores{"every round": 102, "skipped two": 46, "scored zero": 46, "never came": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.system, func(t *testing.T) {
			got, err := ScoreTournament(rounds, tt.system)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("scores mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBestRoundsCountsPlayedZero(t *testing.T) {
	played := []RoundScore{PlayedRound(1, 0), PlayedRound(2, 0), PlayedRound(3, 5)}
	if got := SumBest2.Total(played); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	if SumBest2.RoundsCounted() != 2 || SumAllRounds.RoundsCounted() != 0 {
		t.Fatalf("unexpected round counts")
	}
}

func TestUnknownTournamentSystem(t *testing.T) {
	_, err := ScoreTournament(nil, "Sum best 5 rounds")
	if !errors.Is(err, ErrUnknownScoringSystem) {
		t.Fatalf("expected ErrUnknownScoringSystem, got %v", err)
	}
	var unknown *UnknownSystemError
	if !errors.As(err, &unknown) || unknown.Kind != KindTournament {
		t.Fatalf("expected tournament kind error, got %v", err)
	}
}

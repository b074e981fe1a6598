package scoringdomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRank(t *testing.T) {
	scores := map[PlayerID]float64{
		"alice": 102,
		"bob":   102,
		"carol": 90,
		"dave":  46,
		"erin":  200,
	}

	got := Rank(scores, map[PlayerID]bool{"erin": true})
	want := []Standing{
		{Player: "alice", Score: 102, Rank: 1},
		{Player: "bob", Score: 102, Rank: 1},
		{Player: "carol", Score: 90, Rank: 3},
		{Player: "dave", Score: 46, Rank: 4},
		{Player: "erin", Score: 200, Rank: Unranked},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("standings mismatch (-want +got):\n%s", diff)
	}

	if got := Rank(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty standings, got %v", got)
	}
}

func TestBestCountries(t *testing.T) {
	results := []GameResult{
		{Game: "R1G1", Player: "alice", Power: France, Score: 30, Centres: 8},
		{Game: "R1G2", Player: "bob", Power: France, Score: 40, Centres: 6},
		{Game: "R2G1", Player: "carol", Power: France, Score: 30, Centres: 10},
		{Game: "R2G1", Player: "dave", Power: Turkey, Score: 12, Centres: 3},
		{Game: "R2G2", Player: "erin", Power: "Prussia", Score: 99, Centres: 20},
	}

	byScore := BestCountries(results, false)
	if len(byScore) != PowerCount {
		t.Fatalf("expected every power present, got %d", len(byScore))
	}
	players := func(rs []GameResult) []PlayerID {
		out := make([]PlayerID, len(rs))
		for i, r := range rs {
			out[i] = r.Player
		}
		return out
	}
	if diff := cmp.Diff([]PlayerID{"bob", "carol", "alice"}, players(byScore[France])); diff != "" {
		t.Fatalf("France by score mismatch (-want +got):\n%s", diff)
	}

	byCentres := BestCountries(results, true)
	if diff := cmp.Diff([]PlayerID{"carol", "alice", "bob"}, players(byCentres[France])); diff != "" {
		t.Fatalf("France by centres mismatch (-want +got):\n%s", diff)
	}
	if len(byCentres[Austria]) != 0 {
		t.Fatalf("expected no Austrian results, got %v", byCentres[Austria])
	}
}

package scoringservice

import (
	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// GameScoreResult is a scored game.
type GameScoreResult struct {
	GameID  uuid.UUID                              `json:"game_id"`
	Name    string                                 `json:"name"`
	System  scoringdomain.GameSystem               `json:"system"`
	Outcome scoringdomain.Outcome                  `json:"outcome"`
	Summary string                                 `json:"summary"`
	Scores  scoringdomain.GameScores               `json:"scores"`
	Players map[scoringdomain.GreatPower]uuid.UUID `json:"players,omitempty"`
}

// RoundScoreResult is a scored round.
type RoundScoreResult struct {
	RoundID uuid.UUID                 `json:"round_id"`
	Number  int                       `json:"number"`
	System  scoringdomain.RoundSystem `json:"system"`
	Scores  map[uuid.UUID]float64     `json:"scores"`
	// SitterBonus lists the players given the sitter bonus this round.
	SitterBonus []uuid.UUID `json:"sitter_bonus,omitempty"`
}

// TournamentScoreResult is a scored tournament.
type TournamentScoreResult struct {
	TournamentID uuid.UUID                      `json:"tournament_id"`
	System       scoringdomain.TournamentSystem `json:"system"`
	Scores       map[uuid.UUID]float64          `json:"scores"`
	Standings    []Standing                     `json:"standings"`
}

// Standing is one row of a tournament's standings.
type Standing struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Rank     int       `json:"rank"`
	Score    float64   `json:"score"`
	// Rounds holds the player's score per round, nil where they did not play.
	Rounds []*float64 `json:"rounds"`
}

// StoredScores reports what StoreScores wrote.
type StoredScores struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	GameID       uuid.UUID `json:"game_id"`
	Games        int       `json:"games"`
	Rounds       int       `json:"rounds"`
	Players      int       `json:"players"`
}

package scoringevents

import "github.com/google/uuid"

// GameScoreRequestedPayloadV1 is the payload of GameScoreRequestedV1.
type GameScoreRequestedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
}

// GameFinishedPayloadV1 is the payload of GameFinishedV1.
type GameFinishedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
}

// GameScoredPayloadV1 is the payload of GameScoredV1. Scores are keyed by power name.
type GameScoredPayloadV1 struct {
	GameID  uuid.UUID          `json:"game_id"`
	Name    string             `json:"name"`
	System  string             `json:"system"`
	Outcome string             `json:"outcome"`
	Summary string             `json:"summary,omitempty"`
	Scores  map[string]float64 `json:"scores"`
}

// GameScoreFailedPayloadV1 is the payload of GameScoreFailedV1 and GameFinishFailedV1.
type GameScoreFailedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Reason string    `json:"reason"`
}

// CentreCountsSubmittedPayloadV1 carries one year of counts keyed by power name.
type CentreCountsSubmittedPayloadV1 struct {
	GameID uuid.UUID      `json:"game_id"`
	Year   int            `json:"year"`
	Counts map[string]int `json:"counts"`
}

// CentreCountsRecordedPayloadV1 is the payload of CentreCountsRecordedV1.
type CentreCountsRecordedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Year   int       `json:"year"`
}

// CentreCountsRejectedPayloadV1 is the payload of CentreCountsRejectedV1.
type CentreCountsRejectedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Year   int       `json:"year"`
	Reason string    `json:"reason"`
}

// DrawProposalSubmittedPayloadV1 is a draw vote. Powers may be empty in a DIAS tournament.
type DrawProposalSubmittedPayloadV1 struct {
	GameID        uuid.UUID `json:"game_id"`
	Year          int       `json:"year"`
	Season        string    `json:"season"`
	Powers        []string  `json:"powers,omitempty"`
	Status        string    `json:"status"`
	VotesInFavour int       `json:"votes_in_favour,omitempty"`
	VotesAgainst  int       `json:"votes_against,omitempty"`
}

// DrawProposalRecordedPayloadV1 is the payload of DrawProposalRecordedV1.
type DrawProposalRecordedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Year   int       `json:"year"`
	Season string    `json:"season"`
	Status string    `json:"status"`
}

// DrawProposalRejectedPayloadV1 is the payload of DrawProposalRejectedV1.
type DrawProposalRejectedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Reason string    `json:"reason"`
}

// TournamentStandingsRequestedPayloadV1 is the payload of TournamentStandingsRequestedV1.
type TournamentStandingsRequestedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
}

// StandingV1 is one ranked player. Rank 0 marks an unranked player.
type StandingV1 struct {
	PlayerID uuid.UUID  `json:"player_id"`
	Name     string     `json:"name"`
	Rank     int        `json:"rank"`
	Score    float64    `json:"score"`
	Rounds   []*float64 `json:"rounds"`
}

// TournamentStandingsPayloadV1 is the payload of TournamentStandingsV1.
type TournamentStandingsPayloadV1 struct {
	TournamentID uuid.UUID    `json:"tournament_id"`
	System       string       `json:"system"`
	Standings    []StandingV1 `json:"standings"`
}

// TournamentStandingsFailedPayloadV1 is the payload of TournamentStandingsFailedV1.
type TournamentStandingsFailedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Reason       string    `json:"reason"`
}

// Package scoringevents holds the scoring topics and their JSON payloads.
package scoringevents

// Game scoring
const (
	// GameScoreRequestedV1 asks for a game's current scores.
	GameScoreRequestedV1 = "scoring.game.score.requested.v1"
	// GameScoredV1 carries a scored game.
	GameScoredV1 = "scoring.game.scored.v1"
	// GameScoreFailedV1 reports a game that could not be scored.
	GameScoreFailedV1 = "scoring.game.score.failed.v1"

	// GameFinishedV1 announces that a game is over. Scores are stored in the background.
	GameFinishedV1 = "scoring.game.finished.v1"
	// GameFinishFailedV1 reports a finish that was rejected.
	GameFinishFailedV1 = "scoring.game.finish.failed.v1"
)

// Game recording
const (
	CentreCountsSubmittedV1 = "scoring.game.centre_counts.submitted.v1"
	CentreCountsRecordedV1  = "scoring.game.centre_counts.recorded.v1"
	CentreCountsRejectedV1  = "scoring.game.centre_counts.rejected.v1"

	DrawProposalSubmittedV1 = "scoring.game.draw.submitted.v1"
	DrawProposalRecordedV1  = "scoring.game.draw.recorded.v1"
	DrawProposalRejectedV1  = "scoring.game.draw.rejected.v1"
)

// Tournament standings
const (
	TournamentStandingsRequestedV1 = "scoring.tournament.standings.requested.v1"
	TournamentStandingsV1          = "scoring.tournament.standings.v1"
	TournamentStandingsFailedV1    = "scoring.tournament.standings.failed.v1"
)

// StreamName is the JetStream stream carrying every scoring subject.
const StreamName = "SCORING"

// StreamSubjects returns the subjects bound to StreamName.
func StreamSubjects() []string {
	return []string{"scoring.>"}
}

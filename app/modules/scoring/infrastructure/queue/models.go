package scoringqueue

import "github.com/google/uuid"

const (
	// QueueName is the dedicated River queue for scoring jobs.
	QueueName = "scoring"

	storeScoresKind = "store_scores"
)

// StoreScoresJob persists the scores of the tournament a finished game belongs to.
type StoreScoresJob struct {
	GameID uuid.UUID `json:"game_id"`
}

// Kind returns the job type identifier for River
func (StoreScoresJob) Kind() string { return storeScoresKind }

// JobInfo represents information about a queued job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	GameID      string `json:"game_id"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}

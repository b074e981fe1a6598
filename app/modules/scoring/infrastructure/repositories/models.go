package scoringdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tournament holds the scoring policies and board a tournament is played with.
type Tournament struct {
	bun.BaseModel `bun:"table:scoring_tournaments,alias:t"`

	UUID             uuid.UUID `bun:"uuid,pk,type:uuid,default:gen_random_uuid()"`
	Name             string    `bun:"name,notnull"`
	GameSystem       string    `bun:"game_system,notnull"`
	RoundSystem      string    `bun:"round_system,notnull"`
	TournamentSystem string    `bun:"tournament_system,notnull"`
	TotalCentres     int       `bun:"total_centres,notnull,default:34"`
	SoloThreshold    int       `bun:"solo_threshold,notnull,default:18"`
	DIAS             bool      `bun:"dias,notnull,default:false"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Round is one numbered round of a tournament.
type Round struct {
	bun.BaseModel `bun:"table:scoring_rounds,alias:r"`

	UUID           uuid.UUID `bun:"uuid,pk,type:uuid,default:gen_random_uuid()"`
	TournamentUUID uuid.UUID `bun:"tournament_uuid,type:uuid,notnull"`
	Number         int       `bun:"number,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Game is one board played within a round.
type Game struct {
	bun.BaseModel `bun:"table:scoring_games,alias:g"`

	UUID      uuid.UUID `bun:"uuid,pk,type:uuid,default:gen_random_uuid()"`
	RoundUUID uuid.UUID `bun:"round_uuid,type:uuid,notnull"`
	Name      string    `bun:"name,notnull"`
	Finished  bool      `bun:"finished,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Player is a tournament entrant. Score is the last stored tournament total.
type Player struct {
	bun.BaseModel `bun:"table:scoring_players,alias:p"`

	UUID           uuid.UUID `bun:"uuid,pk,type:uuid,default:gen_random_uuid()"`
	TournamentUUID uuid.UUID `bun:"tournament_uuid,type:uuid,notnull"`
	Name           string    `bun:"name,notnull"`
	Unranked       bool      `bun:"unranked,notnull,default:false"`
	Score          *float64  `bun:"score"`
}

// RoundPlayer is a player's entry in a round.
type RoundPlayer struct {
	bun.BaseModel `bun:"table:scoring_round_players,alias:rp"`

	RoundUUID  uuid.UUID `bun:"round_uuid,pk,type:uuid"`
	PlayerUUID uuid.UUID `bun:"player_uuid,pk,type:uuid"`
	SatOut     bool      `bun:"sat_out,notnull,default:false"`
	Score      *float64  `bun:"score"`
}

// GamePlayer is the player who played one power in one game.
type GamePlayer struct {
	bun.BaseModel `bun:"table:scoring_game_players,alias:gp"`

	GameUUID   uuid.UUID `bun:"game_uuid,pk,type:uuid"`
	Power      string    `bun:"power,pk"`
	PlayerUUID uuid.UUID `bun:"player_uuid,type:uuid,notnull"`
	Score      *float64  `bun:"score"`
}

// CentreCount is a power's supply centre total at the end of a year.
type CentreCount struct {
	bun.BaseModel `bun:"table:scoring_centre_counts,alias:cc"`

	GameUUID uuid.UUID `bun:"game_uuid,pk,type:uuid"`
	Power    string    `bun:"power,pk"`
	Year     int       `bun:"year,pk"`
	Count    int       `bun:"count,notnull"`
}

// DrawProposal is a recorded draw vote.
type DrawProposal struct {
	bun.BaseModel `bun:"table:scoring_draw_proposals,alias:dp"`

	ID            int64     `bun:"id,pk,autoincrement"`
	GameUUID      uuid.UUID `bun:"game_uuid,type:uuid,notnull"`
	Year          int       `bun:"year,notnull"`
	Season        string    `bun:"season,notnull"`
	Powers        []string  `bun:"powers,array,notnull"`
	Status        string    `bun:"status,notnull"`
	VotesInFavour int       `bun:"votes_in_favour,notnull,default:0"`
	VotesAgainst  int       `bun:"votes_against,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

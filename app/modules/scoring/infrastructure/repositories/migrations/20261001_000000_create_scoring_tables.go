package scoringmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scoring tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS scoring_tournaments (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(200) NOT NULL,
					game_system VARCHAR(60) NOT NULL,
					round_system VARCHAR(60) NOT NULL,
					tournament_system VARCHAR(60) NOT NULL,
					total_centres INTEGER NOT NULL DEFAULT 34,
					solo_threshold INTEGER NOT NULL DEFAULT 18,
					dias BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS scoring_rounds (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tournament_uuid UUID NOT NULL REFERENCES scoring_tournaments(uuid) ON DELETE CASCADE,
					number INTEGER NOT NULL CHECK (number > 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (tournament_uuid, number)
				);

				CREATE TABLE IF NOT EXISTS scoring_games (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					round_uuid UUID NOT NULL REFERENCES scoring_rounds(uuid) ON DELETE CASCADE,
					name VARCHAR(100) NOT NULL,
					finished BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_scoring_games_round ON scoring_games(round_uuid);

				CREATE TABLE IF NOT EXISTS scoring_players (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tournament_uuid UUID NOT NULL REFERENCES scoring_tournaments(uuid) ON DELETE CASCADE,
					name VARCHAR(200) NOT NULL,
					unranked BOOLEAN NOT NULL DEFAULT FALSE,
					score DOUBLE PRECISION
				);
				CREATE INDEX IF NOT EXISTS idx_scoring_players_tournament ON scoring_players(tournament_uuid);

				CREATE TABLE IF NOT EXISTS scoring_round_players (
					round_uuid UUID NOT NULL REFERENCES scoring_rounds(uuid) ON DELETE CASCADE,
					player_uuid UUID NOT NULL REFERENCES scoring_players(uuid) ON DELETE CASCADE,
					sat_out BOOLEAN NOT NULL DEFAULT FALSE,
					score DOUBLE PRECISION,
					PRIMARY KEY (round_uuid, player_uuid)
				);

				CREATE TABLE IF NOT EXISTS scoring_game_players (
					game_uuid UUID NOT NULL REFERENCES scoring_games(uuid) ON DELETE CASCADE,
					power VARCHAR(10) NOT NULL,
					player_uuid UUID NOT NULL REFERENCES scoring_players(uuid) ON DELETE CASCADE,
					score DOUBLE PRECISION,
					PRIMARY KEY (game_uuid, power)
				);
				CREATE INDEX IF NOT EXISTS idx_scoring_game_players_player ON scoring_game_players(player_uuid);

				CREATE TABLE IF NOT EXISTS scoring_centre_counts (
					game_uuid UUID NOT NULL REFERENCES scoring_games(uuid) ON DELETE CASCADE,
					power VARCHAR(10) NOT NULL,
					year INTEGER NOT NULL CHECK (year > 1900),
					count INTEGER NOT NULL CHECK (count >= 0),
					PRIMARY KEY (game_uuid, power, year)
				);

				CREATE TABLE IF NOT EXISTS scoring_draw_proposals (
					id BIGSERIAL PRIMARY KEY,
					game_uuid UUID NOT NULL REFERENCES scoring_games(uuid) ON DELETE CASCADE,
					year INTEGER NOT NULL,
					season VARCHAR(1) NOT NULL CHECK (season IN ('S', 'F')),
					powers TEXT[] NOT NULL,
					status VARCHAR(10) NOT NULL CHECK (status IN ('pending', 'passed', 'failed')),
					votes_in_favour INTEGER NOT NULL DEFAULT 0,
					votes_against INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_scoring_draw_proposals_game ON scoring_draw_proposals(game_uuid);
			`); err != nil {
				return fmt.Errorf("failed to create scoring tables: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scoring tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS scoring_draw_proposals;
				DROP TABLE IF EXISTS scoring_centre_counts;
				DROP TABLE IF EXISTS scoring_game_players;
				DROP TABLE IF EXISTS scoring_round_players;
				DROP TABLE IF EXISTS scoring_players;
				DROP TABLE IF EXISTS scoring_games;
				DROP TABLE IF EXISTS scoring_rounds;
				DROP TABLE IF EXISTS scoring_tournaments;
			`); err != nil {
				return fmt.Errorf("failed to drop scoring tables: %w", err)
			}
			return nil
		})
	})
}

package ratingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rating tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS leagues (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					points_to_win INTEGER,
					minimum_difference INTEGER,
					half_time_switch BOOLEAN,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS rating_entities (
					id TEXT PRIMARY KEY,
					kind TEXT NOT NULL CHECK (kind IN ('player', 'team')),
					default_rating INTEGER NOT NULL DEFAULT 0
				);

				CREATE TABLE IF NOT EXISTS team_members (
					team_id TEXT NOT NULL REFERENCES rating_entities(id) ON DELETE CASCADE,
					player_id TEXT NOT NULL REFERENCES rating_entities(id),
					PRIMARY KEY (team_id, player_id)
				);

				CREATE TABLE IF NOT EXISTS league_entities (
					league_id TEXT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					entity_id TEXT NOT NULL REFERENCES rating_entities(id),
					joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (league_id, entity_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create league tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS games (
					id TEXT PRIMARY KEY,
					league_id TEXT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					played_at TIMESTAMPTZ NOT NULL,
					finished BOOLEAN NOT NULL DEFAULT FALSE,
					winner TEXT NOT NULL DEFAULT ''
				);
				CREATE INDEX IF NOT EXISTS idx_games_league_order ON games(league_id, played_at, id);

				CREATE TABLE IF NOT EXISTS game_points (
					game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					seq INTEGER NOT NULL,
					time_offset INTEGER NOT NULL,
					against BOOLEAN NOT NULL DEFAULT FALSE,
					scorer_id TEXT NOT NULL,
					PRIMARY KEY (game_id, seq)
				);

				CREATE TABLE IF NOT EXISTS game_participants (
					game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					entity_id TEXT NOT NULL REFERENCES rating_entities(id),
					side TEXT NOT NULL CHECK (side IN ('blue', 'red')),
					role TEXT NOT NULL DEFAULT 'player' CHECK (role IN ('player', 'team')),
					PRIMARY KEY (game_id, entity_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create game tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS rating_ledger (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					league_id TEXT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					entity_id TEXT NOT NULL,
					game_id TEXT NOT NULL,
					game_time TIMESTAMPTZ NOT NULL,
					rating_before INTEGER NOT NULL,
					delta INTEGER NOT NULL,
					rating_after INTEGER NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_rating_ledger_entry UNIQUE (league_id, entity_id, game_id),
					CONSTRAINT chk_rating_ledger_sum CHECK (rating_after = rating_before + delta)
				);
				CREATE INDEX IF NOT EXISTS idx_rating_ledger_entity_order
					ON rating_ledger(league_id, entity_id, game_time DESC, game_id DESC);
				CREATE INDEX IF NOT EXISTS idx_rating_ledger_game
					ON rating_ledger(league_id, game_id);
			`); err != nil {
				return fmt.Errorf("failed to create rating_ledger table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rating tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS rating_ledger;
				DROP TABLE IF EXISTS game_participants;
				DROP TABLE IF EXISTS game_points;
				DROP TABLE IF EXISTS games;
				DROP TABLE IF EXISTS league_entities;
				DROP TABLE IF EXISTS team_members;
				DROP TABLE IF EXISTS rating_entities;
				DROP TABLE IF EXISTS leagues;
			`); err != nil {
				return fmt.Errorf("failed to drop rating tables: %w", err)
			}
			return nil
		})
	})
}

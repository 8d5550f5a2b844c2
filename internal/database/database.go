// Package database archives completed rounds to Postgres. Like the
// Redis historian it is optional and best effort: a nil pool disables
// archiving without touching gameplay.
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rookwood101/irish-snap/engine"
)

// DB is the shared connection pool, nil when no database is configured.
var DB *pgxpool.Pool

const schema = `
CREATE TABLE IF NOT EXISTS game_rounds (
	game_id      UUID        NOT NULL,
	round_number INT         NOT NULL,
	moves        JSONB       NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, round_number)
);`

// Connect opens the shared pool, verifies it, and ensures the schema.
func Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}
	DB = pool
	return nil
}

// Close releases the shared pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// StoreRound persists one frozen round move log. Idempotent: replaying
// the same round number for a game is a no-op.
func StoreRound(ctx context.Context, gameID uuid.UUID, roundNumber int, moves []engine.Move) error {
	if DB == nil {
		return fmt.Errorf("database pool is not initialised")
	}
	data, err := json.Marshal(moves)
	if err != nil {
		return fmt.Errorf("marshal round %d: %w", roundNumber, err)
	}
	_, err = DB.Exec(ctx,
		`INSERT INTO game_rounds (game_id, round_number, moves)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (game_id, round_number) DO NOTHING`,
		gameID, roundNumber, data)
	if err != nil {
		return fmt.Errorf("insert round %d: %w", roundNumber, err)
	}
	return nil
}

// Package cache publishes per-game action records to Redis so an
// external historian can reconstruct sessions. Publishing is best
// effort: a nil client or a failed write never affects gameplay.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. It stays nil when no Redis address
// is configured; callers must nil-check before publishing.
var Rdb *redis.Client

// Init connects the shared client and verifies the connection.
func Init(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// Close releases the shared client.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}

// GameActionRecord is one routed action, ordered by ActionIndex within
// its game.
type GameActionRecord struct {
	GameID      uuid.UUID `json:"gameId"`
	ActionIndex int       `json:"actionIndex"`
	ActorID     uuid.UUID `json:"actorId"`
	Kind        string    `json:"kind"`
	Payload     string    `json:"payload,omitempty"`
	Timestamp   int64     `json:"timestamp"` // unix milliseconds
}

// actionListKey returns the per-game list key.
func actionListKey(gameID uuid.UUID) string {
	return "game:" + gameID.String() + ":actions"
}

// PublishGameAction appends the record to the game's action list.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client is not initialised")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.RPush(ctx, actionListKey(rec.GameID), data).Err(); err != nil {
		return fmt.Errorf("rpush action record: %w", err)
	}
	return nil
}

// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// QueueName is the Redis list (queue) the lobby event history is pushed to.
var QueueName = "imposter_lobby_events"

// LobbyEventRecord holds the minimal info needed by the historian service.
type LobbyEventRecord struct {
	LobbyID     uuid.UUID              `json:"lobby_id"`
	EventIndex  int                    `json:"event_index"`
	ActorUserID uuid.UUID              `json:"actor_user_id"`
	EventType   string                 `json:"event_type"`
	Payload     map[string]interface{} `json:"payload"`
	Timestamp   int64                  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client and checks that it answers.
func ConnectRedis(addr string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishLobbyEvent serializes the given record to JSON, then pushes it to the Redis queue.
func PublishLobbyEvent(ctx context.Context, record LobbyEventRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal LobbyEventRecord: %w", err)
	}

	if err := Rdb.RPush(ctx, QueueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", QueueName, err)
	}
	return nil
}

// SnapshotCache keeps the latest public view of each lobby in Redis, keyed by lobby code,
// so other processes can read lobby state without reaching into the server.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache returns a cache writing through client. Entries expire after ttl
// unless refreshed; a ttl of 0 keeps them until deleted.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(code string) string {
	return "imposter:lobby:" + code
}

// PutSnapshot stores the JSON encoding of view under the lobby code.
func (c *SnapshotCache) PutSnapshot(ctx context.Context, code string, view interface{}) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot of %s: %w", code, err)
	}
	if err := c.client.Set(ctx, snapshotKey(code), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot of %s: %w", code, err)
	}
	return nil
}

// DeleteSnapshot drops the cached view of a lobby.
func (c *SnapshotCache) DeleteSnapshot(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, snapshotKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot of %s: %w", code, err)
	}
	return nil
}

// internal/database/events.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/imposter/internal/cache"
)

// InsertLobbyEvents writes a batch of history records in one transaction.
// Records already stored under the same (lobby, index) are skipped.
func InsertLobbyEvents(ctx context.Context, records []cache.LobbyEventRecord) error {
	if len(records) == 0 {
		return nil
	}

	q := `
	INSERT INTO lobby_events (lobby_id, event_index, actor_user_id, event_type, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (lobby_id, event_index) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, r := range records {
			payload, err := json.Marshal(r.Payload)
			if err != nil {
				return fmt.Errorf("failed to marshal payload of event %d: %w", r.EventIndex, err)
			}
			var actor *uuid.UUID
			if r.ActorUserID != uuid.Nil {
				actor = &r.ActorUserID
			}
			if _, err := tx.Exec(ctx, q, r.LobbyID, r.EventIndex, actor, r.EventType, payload, time.UnixMilli(r.Timestamp)); err != nil {
				return fmt.Errorf("failed to insert event %d of lobby %s: %w", r.EventIndex, r.LobbyID, err)
			}
		}
		return nil
	})
}

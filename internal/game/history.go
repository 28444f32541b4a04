// internal/game/history.go
package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/cache"
	log "github.com/sirupsen/logrus"
)

// logAction queues one entry of the lobby's event history for the historian.
// Publishing happens in the background; without a Redis client it is a no-op.
// Assumes lock is held.
func (g *ImposterGame) logAction(actorUserID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if cache.Rdb == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	record := cache.LobbyEventRecord{
		LobbyID:     g.LobbyID,
		EventIndex:  g.actionIndex,
		ActorUserID: actorUserID,
		EventType:   actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}

	go func(rec cache.LobbyEventRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishLobbyEvent(ctx, rec); err != nil {
			log.WithError(err).WithFields(log.Fields{"lobby": rec.LobbyID, "event": rec.EventType}).Warn("failed to publish lobby event")
		}
	}(record)
}

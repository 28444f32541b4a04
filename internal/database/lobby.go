// internal/database/lobby.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/imposter/internal/models"
)

// speakingOrderDoc is the JSON stored in game_states.speaking_order.
type speakingOrderDoc struct {
	Order       []string `json:"order"`
	RoundNumber int      `json:"roundNumber"`
}

// SaveLobbyRecord upserts the lobby row and replaces its players and game state in one
// transaction. A record whose version is not newer than the stored one is ignored.
func SaveLobbyRecord(ctx context.Context, rec models.LobbyRecord) error {
	settings, err := json.Marshal(rec.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	order, err := json.Marshal(speakingOrderDoc{Order: rec.GameState.SpeakingOrder, RoundNumber: rec.GameState.RoundNumber})
	if err != nil {
		return fmt.Errorf("failed to marshal speaking order: %w", err)
	}

	upsertLobby := `
	INSERT INTO lobbies (id, code, host_id, settings, created_at, version, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, now())
	ON CONFLICT (id) DO UPDATE
	SET host_id = EXCLUDED.host_id,
	    settings = EXCLUDED.settings,
	    version = EXCLUDED.version,
	    updated_at = now()
	WHERE lobbies.version < EXCLUDED.version
	`
	upsertState := `
	INSERT INTO game_states (lobby_id, phase, current_word, speaking_order, votes_revealed, updated_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (lobby_id) DO UPDATE
	SET phase = EXCLUDED.phase,
	    current_word = EXCLUDED.current_word,
	    speaking_order = EXCLUDED.speaking_order,
	    votes_revealed = EXCLUDED.votes_revealed,
	    updated_at = now()
	`
	insertPlayer := `
	INSERT INTO lobby_players (
		id, lobby_id, user_id, username, join_order, is_host, connected, is_ready,
		is_imposter, is_eliminated, is_spectating, vote_target, ready_for_voting, ready_for_next_round
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	hostID := &rec.HostID
	if rec.HostID == uuid.Nil {
		hostID = nil
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, upsertLobby, rec.ID, rec.Code, hostID, settings, rec.CreatedAt, rec.Version)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// a newer snapshot is already stored
			return nil
		}

		if _, err := tx.Exec(ctx, upsertState, rec.ID, rec.GameState.Phase, rec.GameState.CurrentWord, order, rec.GameState.VotesRevealed); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM lobby_players WHERE lobby_id = $1`, rec.ID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, p := range rec.Players {
			batch.Queue(insertPlayer,
				p.ID, rec.ID, p.UserID, p.Username, p.JoinOrder, p.IsHost, p.Connected, p.IsReady,
				p.IsImposter, p.IsEliminated, p.IsSpectating, p.VoteTarget, p.ReadyForVoting, p.ReadyForNextRound,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to save lobby %s: %w: %v", rec.ID, models.ErrStorage, err)
	}
	return nil
}

// DeleteLobbyRecord removes a lobby; players and game state cascade.
func DeleteLobbyRecord(ctx context.Context, id uuid.UUID) error {
	if _, err := DB.Exec(ctx, `DELETE FROM lobbies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete lobby %s: %w: %v", id, models.ErrStorage, err)
	}
	return nil
}

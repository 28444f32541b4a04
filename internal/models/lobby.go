// internal/models/lobby.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LobbyRecord is the persisted shape of a lobby: the lobbies row, its players and its game state.
// Version increases with every snapshot so older writes never replace newer ones.
type LobbyRecord struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	HostID    uuid.UUID       `json:"hostId"`
	Settings  map[string]any  `json:"settings"`
	CreatedAt time.Time       `json:"createdAt"`
	Version   int64           `json:"version"`
	Players   []PlayerRecord  `json:"players"`
	GameState GameStateRecord `json:"gameState"`
}

// GameStateRecord mirrors the game_states table.
type GameStateRecord struct {
	Phase         string   `json:"phase"`
	CurrentWord   string   `json:"currentWord,omitempty"`
	SpeakingOrder []string `json:"speakingOrder,omitempty"`
	RoundNumber   int      `json:"roundNumber"`
	VotesRevealed bool     `json:"votesRevealed"`
}

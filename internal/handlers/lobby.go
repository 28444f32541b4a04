// internal/handlers/lobby.go
package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/game"
)

// lobbySummary is one entry of the lobby list.
type lobbySummary struct {
	LobbyID     uuid.UUID  `json:"lobbyId"`
	LobbyCode   string     `json:"lobbyCode"`
	HostName    string     `json:"hostName"`
	PlayerCount int        `json:"playerCount"`
	Phase       game.Phase `json:"phase"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ListLobbiesHandler returns a summary of every active lobby, oldest first.
func (gs *GameServer) ListLobbiesHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := userIDFromToken(tokenFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	lobbies := gs.Store.List()
	out := make([]lobbySummary, 0, len(lobbies))
	for _, l := range lobbies {
		view := l.Game.View()
		s := lobbySummary{
			LobbyID:     l.ID,
			LobbyCode:   l.Code,
			PlayerCount: len(view.Players),
			Phase:       view.GameState.Phase,
			CreatedAt:   l.CreatedAt,
		}
		for _, p := range view.Players {
			if p.IsHost {
				s.HostName = p.Username
			}
		}
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetLobbyHandler returns the public view of the lobby with the given code.
func (gs *GameServer) GetLobbyHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := userIDFromToken(tokenFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	l, err := gs.Store.FindByCode(r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Game.View())
}

// internal/game/view.go
package game

import "github.com/google/uuid"

// LobbyView is the public snapshot of a lobby sent to every member.
// It never contains the word, roles or vote targets.
type LobbyView struct {
	LobbyID   uuid.UUID     `json:"lobbyId"`
	LobbyCode string        `json:"lobbyCode"`
	HostID    uuid.UUID     `json:"hostId"`
	Players   []PlayerView  `json:"players"`
	GameState GameStateView `json:"gameState"`
	Settings  Settings      `json:"settings"`
}

// PlayerView is the public rendering of a Player.
type PlayerView struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"userId"`
	Username          string    `json:"username"`
	IsHost            bool      `json:"isHost"`
	IsReady           bool      `json:"isReady"`
	IsEliminated      bool      `json:"isEliminated"`
	IsSpectating      bool      `json:"isSpectating"`
	HasVoted          bool      `json:"hasVoted"`
	ReadyForVoting    bool      `json:"readyForVoting"`
	ReadyForNextRound bool      `json:"readyForNextRound"`
	Connected         bool      `json:"connected"`
}

// GameStateView is the public part of the game state.
type GameStateView struct {
	Phase          Phase    `json:"phase"`
	SpeakingOrder  []string `json:"speakingOrder"`
	CurrentSpeaker *string  `json:"currentSpeaker"`
	RoundNumber    int      `json:"roundNumber"`
}

// viewUnsafe builds the public snapshot. Assumes lock is held.
func (g *ImposterGame) viewUnsafe() LobbyView {
	players := make([]PlayerView, 0, g.roster.Len())
	for _, p := range g.roster.Players() {
		players = append(players, p.ToView())
	}

	var hostID uuid.UUID
	if h := g.roster.Host(); h != nil {
		hostID = h.ID
	}

	var speaker *string
	if g.phase == PhaseWordTimeSpeaking && g.speakerIndex >= 0 && g.speakerIndex < len(g.speakingOrder) {
		name := g.speakingOrder[g.speakerIndex]
		speaker = &name
	}

	var order []string
	if len(g.speakingOrder) > 0 {
		order = append(order, g.speakingOrder...)
	}

	return LobbyView{
		LobbyID:   g.LobbyID,
		LobbyCode: g.Code,
		HostID:    hostID,
		Players:   players,
		GameState: GameStateView{
			Phase:          g.phase,
			SpeakingOrder:  order,
			CurrentSpeaker: speaker,
			RoundNumber:    g.roundNumber,
		},
		Settings: g.settings,
	}
}

// rolePayloadUnsafe builds the private payload of one player. Imposters get a nil word
// and, when enabled, the hint. Assumes lock is held.
func (g *ImposterGame) rolePayloadUnsafe(p *Player) RolePayload {
	payload := RolePayload{
		Phase:       g.phase,
		IsImposter:  p.IsImposter,
		RoundNumber: g.roundNumber,
	}
	switch {
	case !p.Active():
		// Spectators and eliminated players see neither the word nor a role.
		payload.IsImposter = false
	case p.IsImposter:
		if g.settings.ImposterHint {
			payload.ImposterHint = g.hints[p.ID]
		}
	default:
		word := g.currentWord
		payload.Word = &word
	}
	return payload
}

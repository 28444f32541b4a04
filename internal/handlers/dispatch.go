// internal/handlers/dispatch.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/game"
	"github.com/jason-s-yu/imposter/internal/lobby"
	"github.com/jason-s-yu/imposter/internal/models"
	"github.com/sirupsen/logrus"
)

// clientMessage is the union of every client frame.
type clientMessage struct {
	Type           string                 `json:"type"`
	Token          string                 `json:"token,omitempty"`
	LobbyCode      string                 `json:"lobbyCode,omitempty"`
	Settings       map[string]interface{} `json:"settings,omitempty"`
	TargetPlayerID string                 `json:"targetPlayerId,omitempty"`
	GuessedWord    string                 `json:"guessedWord,omitempty"`
}

// lobbyEntryPayload answers create-lobby and join-lobby.
type lobbyEntryPayload struct {
	LobbyID     uuid.UUID `json:"lobbyId"`
	LobbyCode   string    `json:"lobbyCode"`
	PlayerID    uuid.UUID `json:"playerId"`
	IsHost      bool      `json:"isHost"`
	Reconnected bool      `json:"reconnected"`
	HostName    string    `json:"hostName"`
}

// dispatch runs one client event. Rejections go back to the sender only.
func (gs *GameServer) dispatch(ctx context.Context, cl *client, m clientMessage) {
	var err error
	switch m.Type {
	case "authenticate":
		err = gs.authenticate(ctx, cl, m.Token)
	case "create-lobby":
		err = gs.createLobby(cl)
	case "join-lobby":
		err = gs.joinLobby(cl, m.LobbyCode)
	case "leave-lobby":
		err = gs.leaveLobby(cl)
	case "close-lobby":
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return gs.Store.Close(l, playerID)
		})
	case "update-settings":
		if m.Settings == nil {
			err = fmt.Errorf("missing settings: %w", models.ErrInvalidPayload)
			break
		}
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return l.Game.UpdateSettings(playerID, m.Settings)
		})
	case "start-game":
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return l.Game.StartGame(playerID)
		})
	case "player-ready":
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return l.Game.MarkReady(playerID)
		})
	case "ready-for-voting":
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return l.Game.ReadyForVoting(playerID)
		})
	case "ready-for-next-round":
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return l.Game.ReadyForNextRound(playerID)
		})
	case "cast-vote":
		target, perr := uuid.Parse(m.TargetPlayerID)
		if perr != nil {
			err = fmt.Errorf("invalid targetPlayerId: %w", models.ErrInvalidPayload)
			break
		}
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return l.Game.CastVote(playerID, target)
		})
	case "guess-word":
		if strings.TrimSpace(m.GuessedWord) == "" {
			err = fmt.Errorf("empty guess: %w", models.ErrInvalidPayload)
			break
		}
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			_, gerr := l.Game.GuessWord(playerID, m.GuessedWord)
			return gerr
		})
	case "restart-game":
		err = gs.withLobby(cl, func(l *lobby.Lobby, playerID uuid.UUID) error {
			return l.Game.Restart(playerID)
		})
	default:
		gs.Logger.WithFields(logrus.Fields{"conn": cl.id, "event": m.Type}).Warn("unknown event")
		cl.out.WriteError(fmt.Sprintf("Unknown event type: %s", m.Type))
		return
	}

	if err != nil {
		entry := gs.Logger.WithError(err).WithFields(logrus.Fields{"conn": cl.id, "event": m.Type})
		if isServerError(err) {
			entry.Error("event failed")
		} else {
			entry.Debug("event rejected")
		}
		cl.out.WriteError(errorMessage(err))
	}
}

// authenticate verifies the token and binds the identity to the connection.
// Switching to another identity leaves the lobby the old one was in.
func (gs *GameServer) authenticate(ctx context.Context, cl *client, token string) error {
	userID, err := userIDFromToken(token)
	if err != nil {
		return err
	}
	user, err := gs.Users.VerifyIdentity(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("unknown user %s: %w", userID, models.ErrNotAuthenticated)
	}
	if err != nil {
		return err
	}

	if prev, perr := gs.Sessions.Identity(cl.id); perr == nil && prev.ID != user.ID {
		gs.leaveCurrent(cl)
	}
	if err := gs.Sessions.Authenticate(cl.id, user); err != nil {
		return err
	}

	cl.out.Write(game.GameEvent{Type: game.EventAuthenticated, Payload: map[string]interface{}{"user": user}})
	gs.Logger.WithFields(logrus.Fields{"conn": cl.id, "user": user.ID}).Info("connection authenticated")
	return nil
}

func (gs *GameServer) createLobby(cl *client) error {
	user, err := gs.Sessions.Identity(cl.id)
	if err != nil {
		return err
	}
	gs.leaveCurrent(cl)

	l, res, err := gs.Store.Create(user.ID, user.Username)
	if err != nil {
		return err
	}
	return gs.enterLobby(cl, l, res, game.EventLobbyCreated)
}

func (gs *GameServer) joinLobby(cl *client, code string) error {
	user, err := gs.Sessions.Identity(cl.id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("missing lobbyCode: %w", models.ErrInvalidPayload)
	}

	target, err := gs.Store.FindByCode(code)
	if err != nil {
		return err
	}
	if m, ok := gs.Sessions.Membership(cl.id); ok && m.LobbyID != target.ID {
		gs.leaveCurrent(cl)
	}

	l, res, err := gs.Store.Join(code, user.ID, user.Username)
	if err != nil {
		return err
	}
	return gs.enterLobby(cl, l, res, game.EventLobbyJoined)
}

// enterLobby binds the connection to the player, routes the player's events to it and
// announces the membership. A connection previously attached for the same player is
// told it left the lobby.
func (gs *GameServer) enterLobby(cl *client, l *lobby.Lobby, res game.JoinResult, ev game.GameEventType) error {
	if err := gs.Sessions.Bind(cl.id, l.ID, res.PlayerID); err != nil {
		return err
	}
	if old := l.Attach(res.PlayerID, cl.out); old != nil {
		gs.Sessions.Unbind(old.ID)
		old.Write(game.GameEvent{Type: game.EventLobbyLeft, Payload: map[string]interface{}{
			"lobbyId": l.ID,
			"reason":  "joined from another connection",
		}})
	}

	cl.out.Write(game.GameEvent{Type: ev, Payload: lobbyEntryPayload{
		LobbyID:     l.ID,
		LobbyCode:   l.Code,
		PlayerID:    res.PlayerID,
		IsHost:      res.IsHost,
		Reconnected: res.Reconnected,
		HostName:    res.HostName,
	}})
	l.Game.AnnounceJoin(res.PlayerID)
	return nil
}

func (gs *GameServer) leaveLobby(cl *client) error {
	if _, err := gs.Sessions.Identity(cl.id); err != nil {
		return err
	}
	m, ok := gs.Sessions.Membership(cl.id)
	if !ok {
		return fmt.Errorf("not in a lobby: %w", models.ErrNotFound)
	}
	gs.leaveCurrent(cl)
	cl.out.Write(game.GameEvent{Type: game.EventLobbyLeft, Payload: map[string]interface{}{"lobbyId": m.LobbyID}})
	return nil
}

// leaveCurrent removes the connection's player from its lobby, if any, and deletes
// the lobby once it is empty.
func (gs *GameServer) leaveCurrent(cl *client) {
	m, ok := gs.Sessions.Membership(cl.id)
	if !ok {
		return
	}
	gs.Sessions.Unbind(cl.id)

	l, err := gs.Store.Get(m.LobbyID)
	if err != nil {
		return
	}
	l.Detach(m.PlayerID, cl.id)
	if _, err := l.Game.Leave(m.PlayerID); err != nil && !errors.Is(err, models.ErrNotFound) {
		gs.Logger.WithError(err).WithField("lobby", l.Code).Warn("failed to leave lobby")
	}
	gs.Store.DeleteIfEmpty(l.ID)
}

// withLobby resolves the sender's lobby and player before running fn.
func (gs *GameServer) withLobby(cl *client, fn func(l *lobby.Lobby, playerID uuid.UUID) error) error {
	if _, err := gs.Sessions.Identity(cl.id); err != nil {
		return err
	}
	m, ok := gs.Sessions.Membership(cl.id)
	if !ok {
		return fmt.Errorf("not in a lobby: %w", models.ErrNotFound)
	}
	l, err := gs.Store.Get(m.LobbyID)
	if err != nil {
		gs.Sessions.Unbind(cl.id)
		return err
	}
	return fn(l, m.PlayerID)
}

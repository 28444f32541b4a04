// internal/lobby/lobby.go
package lobby

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/game"
	log "github.com/sirupsen/logrus"
)

// Lobby couples a game with the live connections of its players.
type Lobby struct {
	ID        uuid.UUID
	Code      string
	CreatedAt time.Time

	// Game holds every piece of lobby state except the connections.
	Game *game.ImposterGame

	// connMu guards conns. It may be taken while Game.Mu is held, never the other way round.
	connMu sync.Mutex
	conns  map[uuid.UUID]*LobbyConnection // playerID -> connection
}

// LobbyConnection is the outbound side of one websocket connection.
type LobbyConnection struct {
	ID      uuid.UUID
	Cancel  func()
	OutChan chan game.GameEvent
}

// NewLobbyConnection returns a connection with a buffered outbound queue.
func NewLobbyConnection(id uuid.UUID, buffer int, cancel func()) *LobbyConnection {
	return &LobbyConnection{
		ID:      id,
		Cancel:  cancel,
		OutChan: make(chan game.GameEvent, buffer),
	}
}

// Write pushes an event onto the OutChan without blocking. It reports false if the event was dropped.
func (conn *LobbyConnection) Write(ev game.GameEvent) bool {
	select {
	case conn.OutChan <- ev:
		return true
	default:
		log.WithFields(log.Fields{"conn": conn.ID, "event": ev.Type}).Warn("outbound queue full, dropping event")
		return false
	}
}

// WriteError is a convenience to send an error event.
func (conn *LobbyConnection) WriteError(msg string) {
	conn.Write(game.NewErrorEvent(msg))
}

func newLobby(id uuid.UUID, code string, opts game.Options) *Lobby {
	l := &Lobby{
		ID:        id,
		Code:      code,
		CreatedAt: time.Now(),
		conns:     make(map[uuid.UUID]*LobbyConnection),
	}
	l.Game = game.NewImposterGame(id, code, opts)
	l.Game.CreatedAt = l.CreatedAt
	l.Game.BroadcastFn = l.Broadcast
	l.Game.BroadcastToPlayerFn = l.SendTo
	return l
}

// Attach routes a player's events to conn. A different connection previously attached
// for the same player is returned so the caller can release it.
func (l *Lobby) Attach(playerID uuid.UUID, conn *LobbyConnection) (replaced *LobbyConnection) {
	l.connMu.Lock()
	defer l.connMu.Unlock()

	if old, ok := l.conns[playerID]; ok && old.ID != conn.ID {
		replaced = old
	}
	l.conns[playerID] = conn
	return replaced
}

// Detach stops routing events to the player, provided connID is still the attached connection.
func (l *Lobby) Detach(playerID, connID uuid.UUID) bool {
	l.connMu.Lock()
	defer l.connMu.Unlock()

	if c, ok := l.conns[playerID]; ok && c.ID == connID {
		delete(l.conns, playerID)
		return true
	}
	return false
}

// Broadcast sends an event to every attached connection.
func (l *Lobby) Broadcast(ev game.GameEvent) {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	for _, c := range l.conns {
		c.Write(ev)
	}
}

// SendTo sends an event to one player, if connected.
func (l *Lobby) SendTo(playerID uuid.UUID, ev game.GameEvent) {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	if c, ok := l.conns[playerID]; ok {
		c.Write(ev)
	}
}

// ConnectionCount returns the number of attached connections.
func (l *Lobby) ConnectionCount() int {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	return len(l.conns)
}

// detachAll drops every connection and returns them.
func (l *Lobby) detachAll() []*LobbyConnection {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	out := make([]*LobbyConnection, 0, len(l.conns))
	for id, c := range l.conns {
		out = append(out, c)
		delete(l.conns, id)
	}
	return out
}

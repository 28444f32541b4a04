// internal/session/registry.go
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
)

// Membership is the lobby a connection currently acts in.
type Membership struct {
	LobbyID  uuid.UUID
	PlayerID uuid.UUID
}

type entry struct {
	user       *models.User
	membership *Membership
}

// Registry tracks live websocket connections, the identity each one authenticated as
// and the lobby it is bound to. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]*entry)}
}

// Open registers a freshly accepted connection.
func (r *Registry) Open(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[connID]; !ok {
		r.conns[connID] = &entry{}
	}
}

// Close forgets a connection. The returned membership, if any, is what the connection
// was bound to so the caller can mark the player unreachable.
func (r *Registry) Close(connID uuid.UUID) *Membership {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)
	return e.membership
}

// Authenticate associates a verified identity with the connection.
func (r *Registry) Authenticate(connID uuid.UUID, user *models.User) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("invalid identity: %w", models.ErrNotAuthenticated)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("connection %s: %w", connID, models.ErrNotFound)
	}
	u := *user
	e.user = &u
	return nil
}

// Identity returns the user the connection authenticated as.
func (r *Registry) Identity(connID uuid.UUID) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[connID]
	if !ok || e.user == nil {
		return models.User{}, models.ErrNotAuthenticated
	}
	return *e.user, nil
}

// Bind records that the connection acts as playerID in lobbyID.
func (r *Registry) Bind(connID, lobbyID, playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("connection %s: %w", connID, models.ErrNotFound)
	}
	e.membership = &Membership{LobbyID: lobbyID, PlayerID: playerID}
	return nil
}

// Membership returns the lobby binding of the connection, if any.
func (r *Registry) Membership(connID uuid.UUID) (Membership, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[connID]
	if !ok || e.membership == nil {
		return Membership{}, false
	}
	return *e.membership, true
}

// Unbind clears the lobby binding of the connection.
func (r *Registry) Unbind(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[connID]; ok {
		e.membership = nil
	}
}

// UnbindLobby clears every binding to the given lobby and returns the affected connections.
func (r *Registry) UnbindLobby(lobbyID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for id, e := range r.conns {
		if e.membership != nil && e.membership.LobbyID == lobbyID {
			e.membership = nil
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of open connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

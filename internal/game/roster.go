// internal/game/roster.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
)

// Roster is the ordered membership of one lobby. It is not safe for concurrent
// use; the owning ImposterGame serializes access under its mutex.
type Roster struct {
	players  []*Player // join order
	nextSeat int
}

// Join adds a player for user, or reconnects the user's existing player.
// New players are spectators when spectate is true. reconnected is true when
// an existing record was reused.
func (r *Roster) Join(userID uuid.UUID, username string, spectate bool) (p *Player, reconnected bool, err error) {
	if existing := r.FindByUser(userID); existing != nil {
		existing.Connected = true
		existing.LastSeen = time.Time{}
		if username != "" {
			existing.Username = username
		}
		return existing, true, nil
	}

	seated := 0
	for _, pl := range r.players {
		if !pl.IsEliminated {
			seated++
		}
	}
	if seated >= MaxPlayers {
		return nil, false, fmt.Errorf("lobby has %d players: %w", seated, models.ErrLobbyFull)
	}

	r.nextSeat++
	p = &Player{
		ID:           uuid.New(),
		UserID:       userID,
		Username:     username,
		JoinOrder:    r.nextSeat,
		IsHost:       len(r.players) == 0,
		Connected:    true,
		IsSpectating: spectate,
	}
	r.players = append(r.players, p)
	return p, false, nil
}

// Leave removes a player. When the host leaves, the earliest joined remaining
// player becomes host and is returned as newHost.
func (r *Roster) Leave(playerID uuid.UUID) (removed *Player, newHost *Player) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}

	removed = r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if removed.IsHost && len(r.players) > 0 {
		removed.IsHost = false
		// players is kept in join order, so the first entry joined earliest.
		newHost = r.players[0]
		newHost.IsHost = true
	}
	return removed, newHost
}

// MarkUnreachable flags a player as disconnected without touching game flags.
func (r *Roster) MarkUnreachable(playerID uuid.UUID, at time.Time) bool {
	p := r.Find(playerID)
	if p == nil || !p.Connected {
		return false
	}
	p.Connected = false
	p.LastSeen = at
	return true
}

// MarkReachable flags a player as connected again.
func (r *Roster) MarkReachable(playerID uuid.UUID) bool {
	p := r.Find(playerID)
	if p == nil || p.Connected {
		return false
	}
	p.Connected = true
	p.LastSeen = time.Time{}
	return true
}

// ResetRoundFlags clears ready, vote and next-round signals of every player.
func (r *Roster) ResetRoundFlags() {
	for _, p := range r.players {
		p.ResetRoundFlags()
	}
}

// AssignRoles marks exactly the given players as imposters. Other flags are untouched.
func (r *Roster) AssignRoles(imposterIDs []uuid.UUID) {
	set := make(map[uuid.UUID]bool, len(imposterIDs))
	for _, id := range imposterIDs {
		set[id] = true
	}
	for _, p := range r.players {
		p.IsImposter = set[p.ID]
	}
}

// Find returns the player with the given id, or nil.
func (r *Roster) Find(playerID uuid.UUID) *Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// FindByUser returns the player record of a user, or nil.
func (r *Roster) FindByUser(userID uuid.UUID) *Player {
	for _, p := range r.players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Host returns the current host, or nil for an empty roster.
func (r *Roster) Host() *Player {
	for _, p := range r.players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// Players returns all players in join order.
func (r *Roster) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// Active returns the players taking part in the current game, in join order.
func (r *Roster) Active() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// Len is the number of players in the roster.
func (r *Roster) Len() int {
	return len(r.players)
}

// AllUnreachableSince reports whether every player has been disconnected since before cutoff.
// An empty roster reports false.
func (r *Roster) AllUnreachableSince(cutoff time.Time) bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if p.Connected || p.LastSeen.After(cutoff) {
			return false
		}
	}
	return true
}

package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
)

// Player is one membership in a lobby. Everything below JoinOrder is reset between rounds or games.
type Player struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Username  string
	JoinOrder int
	IsHost    bool

	Connected bool
	// LastSeen is when the player was last reachable; zero while connected.
	LastSeen time.Time

	IsReady           bool
	IsImposter        bool
	IsEliminated      bool
	IsSpectating      bool
	VoteTarget        *uuid.UUID
	ReadyForVoting    bool
	ReadyForNextRound bool
}

// Active reports whether the player takes part in the current game.
func (p *Player) Active() bool {
	return !p.IsEliminated && !p.IsSpectating
}

// ResetRoundFlags clears the per-round signals.
func (p *Player) ResetRoundFlags() {
	p.IsReady = false
	p.VoteTarget = nil
	p.ReadyForVoting = false
	p.ReadyForNextRound = false
}

// resetForLobby clears every transient flag, including roles and eliminations.
func (p *Player) resetForLobby() {
	p.ResetRoundFlags()
	p.IsImposter = false
	p.IsEliminated = false
	p.IsSpectating = false
}

// ToView returns the publicly visible fields of the player.
func (p *Player) ToView() PlayerView {
	return PlayerView{
		ID:                p.ID,
		UserID:            p.UserID,
		Username:          p.Username,
		IsHost:            p.IsHost,
		IsReady:           p.IsReady,
		IsEliminated:      p.IsEliminated,
		IsSpectating:      p.IsSpectating,
		HasVoted:          p.VoteTarget != nil,
		ReadyForVoting:    p.ReadyForVoting,
		ReadyForNextRound: p.ReadyForNextRound,
		Connected:         p.Connected,
	}
}

func (p *Player) toRecord() models.PlayerRecord {
	rec := models.PlayerRecord{
		ID:                p.ID,
		UserID:            p.UserID,
		Username:          p.Username,
		JoinOrder:         p.JoinOrder,
		IsHost:            p.IsHost,
		Connected:         p.Connected,
		IsReady:           p.IsReady,
		IsImposter:        p.IsImposter,
		IsEliminated:      p.IsEliminated,
		IsSpectating:      p.IsSpectating,
		ReadyForVoting:    p.ReadyForVoting,
		ReadyForNextRound: p.ReadyForNextRound,
	}
	if p.VoteTarget != nil {
		target := *p.VoteTarget
		rec.VoteTarget = &target
	}
	return rec
}

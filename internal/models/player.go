package models

import "github.com/google/uuid"

// PlayerRecord mirrors the lobby_players table, including the round-transient flags.
type PlayerRecord struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"userId"`
	Username          string     `json:"username"`
	JoinOrder         int        `json:"joinOrder"`
	IsHost            bool       `json:"isHost"`
	Connected         bool       `json:"connected"`
	IsReady           bool       `json:"isReady"`
	IsImposter        bool       `json:"isImposter"`
	IsEliminated      bool       `json:"isEliminated"`
	IsSpectating      bool       `json:"isSpectating"`
	VoteTarget        *uuid.UUID `json:"voteTarget,omitempty"`
	ReadyForVoting    bool       `json:"readyForVoting"`
	ReadyForNextRound bool       `json:"readyForNextRound"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account known to the identity collaborator, with its lifetime game statistics.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Password string    `json:"-"`

	GamesPlayed   int `json:"gamesPlayed"`
	TimesImposter int `json:"timesImposter"`
	ImposterWins  int `json:"imposterWins"`
	Wins          int `json:"wins"`

	CreatedAt time.Time `json:"createdAt"`
}

// ProfileUpdate carries the optional changes of a profile update. Empty fields are left alone.
type ProfileUpdate struct {
	NewUsername     string `json:"newUsername"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ApplyStats adds one statistics delta to the user's counters.
func (u *User) ApplyStats(s GameStats) {
	if s.Won {
		u.Wins++
		if s.WasImposter {
			u.ImposterWins++
		}
		return
	}
	if s.Played {
		u.GamesPlayed++
	}
	if s.WasImposter {
		u.TimesImposter++
	}
}

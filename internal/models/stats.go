package models

// GameStats is a single statistics delta reported for one user.
//
// A game start reports Played together with the user's role. A later round of the
// same game (survival mode) reports only WasImposter. A game end reports Won for
// the winning side, with WasImposter set when the win was an imposter win.
type GameStats struct {
	Played      bool `json:"played"`
	WasImposter bool `json:"wasImposter"`
	Won         bool `json:"won"`
}

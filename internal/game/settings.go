// internal/game/settings.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/imposter/internal/models"
)

const (
	// MaxPlayers caps the number of non-eliminated players in a lobby.
	MaxPlayers = 10

	// MinRoundPlayers is the smallest number of active players a round can be played with.
	MinRoundPlayers = 3

	DefaultWordTimeSeconds = 10
	minWordTimeSeconds     = 3
	maxWordTimeSeconds     = 120
)

// Settings are the host-controlled options of a lobby.
type Settings struct {
	RandomOrder     bool `json:"randomOrder"`     // shuffle the speaking order each round instead of join order
	TwoImposters    bool `json:"twoImposters"`    // two imposters once at least 4 players are active
	ThreeImposters  bool `json:"threeImposters"`  // three imposters once at least 5 players are active
	ImposterHint    bool `json:"imposterHint"`    // imposters see a partially masked word
	WordTimeMode    bool `json:"wordTimeMode"`    // timed speaking turns instead of free discussion
	SurvivalMode    bool `json:"survivalMode"`    // keep playing rounds until 2 players remain
	WordTimeSeconds int  `json:"wordTimeSeconds"` // seconds per speaker in word time mode
}

// DefaultSettings returns the settings of a freshly created lobby.
func DefaultSettings() Settings {
	return Settings{
		RandomOrder:     true,
		WordTimeSeconds: DefaultWordTimeSeconds,
	}
}

// settingKeys is the order in which a partial update is applied. Later keys win
// when one payload sets two conflicting flags.
var settingKeys = []string{
	"randomOrder",
	"imposterHint",
	"wordTimeSeconds",
	"twoImposters",
	"threeImposters",
	"survivalMode",
	"wordTimeMode",
}

// Update merges a partial settings payload into s. Keys that are absent or null keep
// their old value. Turning a flag on clears every flag it conflicts with.
// On error s is left untouched.
func (s *Settings) Update(partial map[string]interface{}) error {
	next := *s

	for _, key := range settingKeys {
		val, exists := partial[key]
		if !exists || val == nil {
			continue
		}

		if key == "wordTimeSeconds" {
			secs, err := asInt(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if secs < minWordTimeSeconds || secs > maxWordTimeSeconds {
				return fmt.Errorf("wordTimeSeconds must be between %d and %d: %w", minWordTimeSeconds, maxWordTimeSeconds, models.ErrInvalidPayload)
			}
			next.WordTimeSeconds = secs
			continue
		}

		on, ok := val.(bool)
		if !ok {
			return fmt.Errorf("invalid type for %s: %w", key, models.ErrInvalidPayload)
		}
		next.set(key, on)
	}

	*s = next
	return nil
}

// set assigns one boolean option and clears its conflicts when it is switched on.
func (s *Settings) set(key string, on bool) {
	switch key {
	case "randomOrder":
		s.RandomOrder = on
	case "imposterHint":
		s.ImposterHint = on
	case "twoImposters":
		s.TwoImposters = on
		if on {
			s.ThreeImposters, s.SurvivalMode, s.WordTimeMode = false, false, false
		}
	case "threeImposters":
		s.ThreeImposters = on
		if on {
			s.TwoImposters, s.SurvivalMode, s.WordTimeMode = false, false, false
		}
	case "survivalMode":
		s.SurvivalMode = on
		if on {
			s.TwoImposters, s.ThreeImposters, s.WordTimeMode = false, false, false
		}
	case "wordTimeMode":
		s.WordTimeMode = on
		if on {
			s.SurvivalMode, s.TwoImposters, s.ThreeImposters = false, false, false
		}
	}
}

// MinPlayers is the number of active players needed to start a game.
func (s Settings) MinPlayers() int {
	switch {
	case s.ThreeImposters:
		return 5
	case s.TwoImposters:
		return 4
	default:
		return MinRoundPlayers
	}
}

// ImposterCount is the number of imposters for a round with n active players.
// It never exceeds n-2, so it is 0 when fewer than MinRoundPlayers remain, and
// at most 1 in survival mode.
func (s Settings) ImposterCount(n int) int {
	if n < MinRoundPlayers {
		return 0
	}
	switch {
	case s.SurvivalMode:
		return 1
	case s.ThreeImposters && n >= 5:
		return 3
	case s.TwoImposters && n >= 4:
		return 2
	}
	return 1
}

// asMap renders the settings the way they are stored in the lobbies.settings column.
func (s Settings) asMap() map[string]any {
	return map[string]any{
		"randomOrder":     s.RandomOrder,
		"twoImposters":    s.TwoImposters,
		"threeImposters":  s.ThreeImposters,
		"imposterHint":    s.ImposterHint,
		"wordTimeMode":    s.WordTimeMode,
		"survivalMode":    s.SurvivalMode,
		"wordTimeSeconds": s.WordTimeSeconds,
	}
}

// asInt accepts JSON numbers (float64) as well as plain ints.
func asInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected a whole number: %w", models.ErrInvalidPayload)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("expected a number: %w", models.ErrInvalidPayload)
	}
}

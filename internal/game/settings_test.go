package game

import (
	"testing"

	"github.com/jason-s-yu/imposter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsUpdateConflicts(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Update(map[string]interface{}{"twoImposters": true}))
	assert.True(t, s.TwoImposters)

	require.NoError(t, s.Update(map[string]interface{}{"survivalMode": true}))
	assert.True(t, s.SurvivalMode)
	assert.False(t, s.TwoImposters, "survival mode clears the imposter boosts")

	// wordTimeMode is applied last, so it wins over survivalMode in the same payload.
	require.NoError(t, s.Update(map[string]interface{}{"survivalMode": true, "wordTimeMode": true}))
	assert.True(t, s.WordTimeMode)
	assert.False(t, s.SurvivalMode)

	require.NoError(t, s.Update(map[string]interface{}{"threeImposters": true, "twoImposters": true}))
	assert.True(t, s.ThreeImposters)
	assert.False(t, s.TwoImposters)
	assert.False(t, s.WordTimeMode)
}

func TestSettingsUpdateRejectsBadValues(t *testing.T) {
	s := DefaultSettings()
	before := s

	err := s.Update(map[string]interface{}{"imposterHint": true, "randomOrder": "yes"})
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
	assert.Equal(t, before, s, "a rejected update leaves settings untouched")

	assert.ErrorIs(t, s.Update(map[string]interface{}{"wordTimeSeconds": float64(2)}), models.ErrInvalidPayload)
	assert.ErrorIs(t, s.Update(map[string]interface{}{"wordTimeSeconds": 10.5}), models.ErrInvalidPayload)
	assert.Equal(t, DefaultWordTimeSeconds, s.WordTimeSeconds)

	require.NoError(t, s.Update(map[string]interface{}{"wordTimeSeconds": nil, "unknown": 1}))
	assert.Equal(t, before, s)
}

func TestImposterCount(t *testing.T) {
	cases := []struct {
		name     string
		settings Settings
		players  int
		want     int
	}{
		{"default", Settings{}, 6, 1},
		{"two with four", Settings{TwoImposters: true}, 4, 2},
		{"two with three", Settings{TwoImposters: true}, 3, 1},
		{"three with five", Settings{ThreeImposters: true}, 5, 3},
		{"three with four", Settings{ThreeImposters: true}, 4, 1},
		{"survival", Settings{SurvivalMode: true}, 8, 1},
		{"two players left", Settings{}, 2, 0},
		{"one player left", Settings{TwoImposters: true}, 1, 0},
		{"survival with two left", Settings{SurvivalMode: true}, 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.settings.ImposterCount(tc.players))
		})
	}
}

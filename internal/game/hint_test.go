package game

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImposterHint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	assert.Equal(t, "Hut", ImposterHint("Hut", rng))

	for i := 0; i < 20; i++ {
		hint := ImposterHint("Elephant", rng)
		assert.Len(t, hint, len("Elephant"))
		assert.Equal(t, "E", hint[:1])
		// floor(8 * 0.4) = 3 letters stay visible.
		assert.Equal(t, 5, strings.Count(hint, "_"))
		for j, r := range hint {
			if r != '_' {
				assert.Equal(t, rune("Elephant"[j]), r)
			}
		}
	}

	hint := ImposterHint("Ice cream", rng)
	assert.Equal(t, " ", hint[3:4], "spaces stay visible")
}

package game

import (
	"math/rand"
	"unicode"
)

// ImposterHint masks most of word with underscores. The first letter is always
// shown, and about 40% of the letters in total. Words of three letters or
// fewer are returned unchanged. Spaces stay visible.
func ImposterHint(word string, rng *rand.Rand) string {
	runes := []rune(word)
	if len(runes) <= 3 {
		return word
	}

	visible := len(runes) * 2 / 5
	if visible < 1 {
		visible = 1
	}

	shown := map[int]bool{0: true}
	for _, i := range rng.Perm(len(runes)) {
		if len(shown) >= visible {
			break
		}
		if unicode.IsSpace(runes[i]) {
			continue
		}
		shown[i] = true
	}

	out := make([]rune, len(runes))
	for i, r := range runes {
		if shown[i] || unicode.IsSpace(r) {
			out[i] = r
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}

package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jason-s-yu/imposter/internal/models"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
	minPasswordLen = 6
)

// NormalizeUsername trims surrounding whitespace and checks the length limits.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return "", fmt.Errorf("username must be between %d and %d characters: %w", minUsernameLen, maxUsernameLen, models.ErrInvalidPayload)
	}
	return username, nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, models.ErrInvalidPayload)
	}
	return nil
}

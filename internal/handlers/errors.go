// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/jason-s-yu/imposter/internal/game"
	"github.com/jason-s-yu/imposter/internal/models"
)

var errorMessages = []struct {
	err    error
	msg    string
	status int
}{
	{models.ErrNotAuthenticated, "Not authenticated", http.StatusUnauthorized},
	{models.ErrNotFound, "Not found", http.StatusNotFound},
	{models.ErrForbidden, "You are not allowed to do that", http.StatusForbidden},
	{models.ErrLobbyFull, "Lobby is full", http.StatusConflict},
	{models.ErrInsufficientPlayers, "Not enough players to start", http.StatusConflict},
	{models.ErrInvalidPhase, "Action not allowed in the current phase", http.StatusConflict},
	{models.ErrConflict, "Already exists", http.StatusConflict},
	{models.ErrInvalidPayload, "Invalid payload", http.StatusBadRequest},
}

// errorMessage maps an error to the user-facing message. Anything that is not a
// known sentinel, storage errors included, becomes a generic server error.
func errorMessage(err error) string {
	if errors.Is(err, models.ErrStorage) || errors.Is(err, game.ErrNoWordSource) {
		return "Server error"
	}
	for _, e := range errorMessages {
		if errors.Is(err, e.err) {
			return e.msg
		}
	}
	return "Server error"
}

func httpStatus(err error) int {
	if errors.Is(err, models.ErrStorage) {
		return http.StatusInternalServerError
	}
	for _, e := range errorMessages {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// isServerError reports whether err should be logged as a server-side failure.
func isServerError(err error) bool {
	return httpStatus(err) == http.StatusInternalServerError
}

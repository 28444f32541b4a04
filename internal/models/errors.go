package models

import "errors"

// Errors shared by the session, lobby and game layers. Handlers map them to a
// single user-facing rejection sent to the requesting connection.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrInvalidPhase        = errors.New("action not allowed in the current phase")
	ErrConflict            = errors.New("conflict")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrStorage             = errors.New("storage error")
)

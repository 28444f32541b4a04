package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/auth"
	"github.com/jason-s-yu/imposter/internal/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%v: %w", err, models.ErrInvalidPayload)
	}
	return nil
}

// CreateUserHandler registers an account.
//
// Request payload:
//
//	{
//	  "username": "alice",
//	  "password": "secret"
//	}
//
// A taken username answers 409.
func (gs *GameServer) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := gs.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		gs.logHTTPError(r, err, "failed to create user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// LoginHandler handles user login requests. It expects a JSON payload with username and password,
// and returns the token together with the user. The token is also sent as the auth_token cookie.
func (gs *GameServer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, user, err := gs.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		gs.logHTTPError(r, err, "failed to authenticate user")
		writeError(w, err)
		return
	}

	cookie := &http.Cookie{
		Name:     authCookie,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	}
	if ttl := auth.TokenTTL(); ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// VerifyUserHandler returns the user with the given id, statistics included.
func (gs *GameServer) VerifyUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gs.writeUser(w, r, req.UserID)
}

// GetUserHandler is the GET form of VerifyUserHandler.
func (gs *GameServer) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	gs.writeUser(w, r, r.PathValue("id"))
}

func (gs *GameServer) writeUser(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		writeError(w, fmt.Errorf("invalid user id: %w", models.ErrInvalidPayload))
		return
	}
	user, err := gs.Users.VerifyIdentity(r.Context(), id)
	if err != nil {
		gs.logHTTPError(r, err, "failed to load user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUserHandler changes the caller's username and/or password.
//
//	{
//	  "newUsername": "alicia",
//	  "currentPassword": "secret",
//	  "newPassword": "secret2"
//	}
func (gs *GameServer) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromToken(tokenFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	var req models.ProfileUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := gs.Users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		gs.logHTTPError(r, err, "failed to update user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (gs *GameServer) logHTTPError(r *http.Request, err error, msg string) {
	entry := gs.Logger.WithError(err).WithField("path", r.URL.Path)
	if isServerError(err) {
		entry.Error(msg)
		return
	}
	entry.Debug(msg)
}

// internal/database/store.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/auth"
	"github.com/jason-s-yu/imposter/internal/cache"
	"github.com/jason-s-yu/imposter/internal/models"
)

// Store exposes the package-level queries as the identity service, the lobby recorder
// and the game stats recorder. It requires ConnectDB to have succeeded.
type Store struct{}

// Register validates the credentials, hashes the password and inserts the user.
func (Store) Register(ctx context.Context, username, password string) (*models.User, error) {
	username, err := auth.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{Username: username, Password: hash}
	if err := CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues a token.
func (Store) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	u, err := GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrNotAuthenticated)
	}
	if err != nil {
		return "", nil, err
	}

	match, err := auth.VerifyPassword(password, u.Password)
	if err != nil || !match {
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrNotAuthenticated)
	}

	token, err := auth.CreateJWT(u.ID.String())
	if err != nil {
		return "", nil, fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, u, nil
}

func (Store) VerifyIdentity(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return u, nil
}

// UpdateProfile renames the user and/or changes the password. A new password needs
// the current one.
func (Store) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	u, err := GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}

	changed := false
	if upd.NewUsername != "" && strings.TrimSpace(upd.NewUsername) != u.Username {
		name, err := auth.NormalizeUsername(upd.NewUsername)
		if err != nil {
			return nil, err
		}
		u.Username = name
		changed = true
	}
	if upd.NewPassword != "" {
		match, err := auth.VerifyPassword(upd.CurrentPassword, u.Password)
		if err != nil || !match {
			return nil, fmt.Errorf("current password is wrong: %w", models.ErrForbidden)
		}
		if err := auth.ValidatePassword(upd.NewPassword); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(upd.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.Password = hash
		changed = true
	}
	if !changed {
		return nil, fmt.Errorf("nothing to update: %w", models.ErrInvalidPayload)
	}

	if err := UpdateUserProfile(ctx, id, u.Username, u.Password); err != nil {
		return nil, err
	}
	return u, nil
}

func (Store) RecordGameStats(ctx context.Context, userID uuid.UUID, s models.GameStats) error {
	return RecordGameStats(ctx, userID, s)
}

func (Store) SaveLobbyRecord(ctx context.Context, rec models.LobbyRecord) error {
	return SaveLobbyRecord(ctx, rec)
}

func (Store) DeleteLobbyRecord(ctx context.Context, id uuid.UUID) error {
	return DeleteLobbyRecord(ctx, id)
}

func (Store) InsertLobbyEvents(ctx context.Context, records []cache.LobbyEventRecord) error {
	return InsertLobbyEvents(ctx, records)
}

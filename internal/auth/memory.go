// internal/auth/memory.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
)

// MemoryStore is an in-process identity collaborator used when no database is configured.
// Accounts live as long as the process.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*models.User
	byName map[string]uuid.UUID // lower-cased username -> id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uuid.UUID]*models.User),
		byName: make(map[string]uuid.UUID),
	}
}

// Register creates an account. Usernames are unique regardless of case.
func (m *MemoryStore) Register(_ context.Context, username, password string) (*models.User, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(username)
	if _, taken := m.byName[key]; taken {
		return nil, fmt.Errorf("username %q: %w", username, models.ErrConflict)
	}
	u := &models.User{ID: uuid.New(), Username: username, Password: hash, CreatedAt: time.Now()}
	m.users[u.ID] = u
	m.byName[key] = u.ID

	out := *u
	return &out, nil
}

// Login checks the credentials and issues a token.
func (m *MemoryStore) Login(_ context.Context, username, password string) (string, *models.User, error) {
	m.mu.RLock()
	id, ok := m.byName[strings.ToLower(strings.TrimSpace(username))]
	var u models.User
	if ok {
		u = *m.users[id]
	}
	m.mu.RUnlock()

	if !ok {
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrNotAuthenticated)
	}
	match, err := VerifyPassword(password, u.Password)
	if err != nil || !match {
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrNotAuthenticated)
	}
	token, err := CreateJWT(u.ID.String())
	if err != nil {
		return "", nil, fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, &u, nil
}

// VerifyIdentity returns the account with the given id.
func (m *MemoryStore) VerifyIdentity(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	out := *u
	return &out, nil
}

// UpdateProfile renames the account and/or changes its password.
func (m *MemoryStore) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	next := *u
	changed := false

	if upd.NewUsername != "" && strings.TrimSpace(upd.NewUsername) != u.Username {
		name, err := NormalizeUsername(upd.NewUsername)
		if err != nil {
			return nil, err
		}
		if other, taken := m.byName[strings.ToLower(name)]; taken && other != id {
			return nil, fmt.Errorf("username %q: %w", name, models.ErrConflict)
		}
		next.Username = name
		changed = true
	}

	if upd.NewPassword != "" {
		match, err := VerifyPassword(upd.CurrentPassword, u.Password)
		if err != nil || !match {
			return nil, fmt.Errorf("current password is wrong: %w", models.ErrForbidden)
		}
		if err := ValidatePassword(upd.NewPassword); err != nil {
			return nil, err
		}
		hash, err := HashPassword(upd.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		next.Password = hash
		changed = true
	}

	if !changed {
		return nil, fmt.Errorf("nothing to update: %w", models.ErrInvalidPayload)
	}

	delete(m.byName, strings.ToLower(u.Username))
	m.byName[strings.ToLower(next.Username)] = id
	*u = next

	out := next
	return &out, nil
}

// RecordGameStats applies a statistics delta to the account.
func (m *MemoryStore) RecordGameStats(_ context.Context, userID uuid.UUID, s models.GameStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	u.ApplyStats(s)
	return nil
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := CreateHash("hunter22", fastParams)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("hunter23", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("hunter22", "plaintext")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestJWT(t *testing.T) {
	require.NoError(t, Init(time.Hour))
	id := uuid.New().String()

	token, err := CreateJWT(id)
	require.NoError(t, err)
	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id, sub)

	_, err = AuthenticateJWT(token + "x")
	assert.Error(t, err)

	// A token signed by another key pair is rejected.
	require.NoError(t, Init(0))
	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	name, err := NormalizeUsername("  alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	_, err = NormalizeUsername("al")
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
	_, err = NormalizeUsername("abcdefghijklmnopqrstu")
	assert.ErrorIs(t, err, models.ErrInvalidPayload)

	assert.ErrorIs(t, ValidatePassword("12345"), models.ErrInvalidPayload)
	assert.NoError(t, ValidatePassword("123456"))
}

func TestMemoryStore(t *testing.T) {
	require.NoError(t, Init(0))
	ctx := context.Background()
	m := NewMemoryStore()

	u, err := m.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Empty(t, u.GamesPlayed)

	_, err = m.Register(ctx, "ALICE", "secret1")
	assert.ErrorIs(t, err, models.ErrConflict)

	token, logged, err := m.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)

	_, _, err = m.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)

	require.NoError(t, m.RecordGameStats(ctx, u.ID, models.GameStats{Played: true, WasImposter: true}))
	require.NoError(t, m.RecordGameStats(ctx, u.ID, models.GameStats{Won: true, WasImposter: true}))
	got, err := m.VerifyIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.GamesPlayed)
	assert.Equal(t, 1, got.TimesImposter)
	assert.Equal(t, 1, got.Wins)
	assert.Equal(t, 1, got.ImposterWins)

	_, err = m.UpdateProfile(ctx, u.ID, models.ProfileUpdate{NewPassword: "another1", CurrentPassword: "nope"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	updated, err := m.UpdateProfile(ctx, u.ID, models.ProfileUpdate{NewUsername: "alicia", CurrentPassword: "secret1", NewPassword: "another1"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)
	_, _, err = m.Login(ctx, "alicia", "another1")
	assert.NoError(t, err)

	_, err = m.UpdateProfile(ctx, u.ID, models.ProfileUpdate{})
	assert.ErrorIs(t, err, models.ErrInvalidPayload)

	_, err = m.VerifyIdentity(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

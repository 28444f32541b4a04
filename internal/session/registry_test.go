package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateAndIdentity(t *testing.T) {
	r := NewRegistry()
	conn := uuid.New()
	user := &models.User{ID: uuid.New(), Username: "alice"}

	assert.ErrorIs(t, r.Authenticate(conn, user), models.ErrNotFound, "unknown connection")

	r.Open(conn)
	_, err := r.Identity(conn)
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)

	assert.ErrorIs(t, r.Authenticate(conn, nil), models.ErrNotAuthenticated)
	assert.ErrorIs(t, r.Authenticate(conn, &models.User{}), models.ErrNotAuthenticated)

	require.NoError(t, r.Authenticate(conn, user))
	got, err := r.Identity(conn)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestBindingLifecycle(t *testing.T) {
	r := NewRegistry()
	a, b := uuid.New(), uuid.New()
	r.Open(a)
	r.Open(b)
	user := &models.User{ID: uuid.New(), Username: "bob"}
	require.NoError(t, r.Authenticate(a, user))
	require.NoError(t, r.Authenticate(b, user))

	lobbyID, playerID := uuid.New(), uuid.New()
	require.NoError(t, r.Bind(a, lobbyID, playerID))
	require.NoError(t, r.Bind(b, lobbyID, playerID))
	assert.Error(t, r.Bind(uuid.New(), lobbyID, playerID))

	m, ok := r.Membership(a)
	require.True(t, ok)
	assert.Equal(t, playerID, m.PlayerID)

	r.Unbind(a)
	_, ok = r.Membership(a)
	assert.False(t, ok)

	assert.Equal(t, []uuid.UUID{b}, r.UnbindLobby(lobbyID))
	_, ok = r.Membership(b)
	assert.False(t, ok)

	require.NoError(t, r.Bind(b, lobbyID, playerID))
	assert.Nil(t, r.Close(a))
	closed := r.Close(b)
	require.NotNil(t, closed)
	assert.Equal(t, lobbyID, closed.LobbyID)
	assert.Equal(t, 0, r.Len())
}

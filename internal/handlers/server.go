// internal/handlers/server.go
package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/lobby"
	"github.com/jason-s-yu/imposter/internal/middleware"
	"github.com/jason-s-yu/imposter/internal/models"
	"github.com/jason-s-yu/imposter/internal/session"
	"github.com/sirupsen/logrus"
)

// IdentityService is the account backend: Postgres in production, memory otherwise.
type IdentityService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	VerifyIdentity(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error)
}

// GameServer holds everything the HTTP and websocket handlers share.
type GameServer struct {
	Store    *lobby.Store
	Sessions *session.Registry
	Users    IdentityService
	Logger   *logrus.Logger

	// OriginPatterns restricts websocket origins; empty allows any.
	OriginPatterns []string
	// OutboundBuffer is the per-connection event queue length.
	OutboundBuffer int
}

// NewGameServer wires a GameServer with a 64 event outbound buffer.
func NewGameServer(store *lobby.Store, sessions *session.Registry, users IdentityService, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Store:          store,
		Sessions:       sessions,
		Users:          users,
		Logger:         logger,
		OutboundBuffer: 64,
	}
}

// Routes registers every endpoint on a fresh mux wrapped in the logging middleware.
func (gs *GameServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /user/create", gs.CreateUserHandler)
	mux.HandleFunc("POST /user/login", gs.LoginHandler)
	mux.HandleFunc("POST /user/verify", gs.VerifyUserHandler)
	mux.HandleFunc("POST /user/update", gs.UpdateUserHandler)
	mux.HandleFunc("GET /user/{id}", gs.GetUserHandler)

	mux.HandleFunc("GET /lobby/list", gs.ListLobbiesHandler)
	mux.HandleFunc("GET /lobby/{code}", gs.GetLobbyHandler)

	mux.HandleFunc("GET /ws", gs.WSHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "lobbies": gs.Store.Len()})
	})

	return middleware.LogMiddleware(gs.Logger)(mux)
}

// OnLobbyRemoved drops the session bindings of a lobby that left the store.
func (gs *GameServer) OnLobbyRemoved(l *lobby.Lobby) {
	conns := gs.Sessions.UnbindLobby(l.ID)
	gs.Logger.WithFields(logrus.Fields{"lobby": l.Code, "connections": len(conns)}).Debug("lobby bindings released")
}

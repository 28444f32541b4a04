// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/lobby"
	"github.com/jason-s-yu/imposter/internal/middleware"
	"github.com/sirupsen/logrus"
)

const (
	subprotocol  = "imposter"
	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second
	writeTimeout = 5 * time.Second
)

// client is one accepted websocket connection.
type client struct {
	id     uuid.UUID
	remote string
	out    *lobby.LobbyConnection
}

// WSHandler upgrades the request and runs the session until the socket closes.
// A valid auth_token cookie authenticates the connection right away.
func (gs *GameServer) WSHandler(w http.ResponseWriter, r *http.Request) {
	origins := gs.OriginPatterns
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{subprotocol},
		OriginPatterns: origins,
	})
	if err != nil {
		gs.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != subprotocol {
		c.Close(BadSubprotocolError, "client must speak the imposter subprotocol")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cl := &client{id: uuid.New(), remote: r.RemoteAddr}
	cl.out = lobby.NewLobbyConnection(cl.id, gs.OutboundBuffer, cancel)
	gs.Sessions.Open(cl.id)
	middleware.LogWebSocketConnect(gs.Logger, cl.remote, cl.id)

	if cookie, cerr := r.Cookie(authCookie); cerr == nil && cookie.Value != "" {
		if err := gs.authenticate(ctx, cl, cookie.Value); err != nil {
			gs.Sessions.Close(cl.id)
			middleware.LogWebSocketDisconnect(gs.Logger, cl.remote, cl.id, err)
			c.Close(InvalidAuthTokenError, "invalid auth token")
			return
		}
	}

	go gs.writePump(ctx, c, cl)
	err = gs.readPump(ctx, c, cl)

	gs.disconnect(cl)
	middleware.LogWebSocketDisconnect(gs.Logger, cl.remote, cl.id, err)
}

// readPump decodes client frames and dispatches them until the socket or ctx closes.
// A normal closure returns nil.
func (gs *GameServer) readPump(ctx context.Context, c *websocket.Conn, cl *client) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			gs.Logger.WithField("conn", cl.id).Warnf("Received non-text message type %d. Ignoring.", typ)
			continue
		}

		var m clientMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			gs.Logger.WithField("conn", cl.id).Warnf("Invalid json: %v", err)
			cl.out.WriteError("Invalid JSON format")
			continue
		}
		gs.dispatch(ctx, cl, m)
	}
}

// writePump drains the outbound queue onto the socket and keeps it alive with pings.
// Any write failure cancels the connection so readPump returns too.
func (gs *GameServer) writePump(ctx context.Context, c *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer cl.out.Cancel()

	log := gs.Logger.WithField("conn", cl.id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-cl.out.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, c, ev)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					log.WithFields(logrus.Fields{"event": ev.Type, "error": err}).Warn("failed to write to websocket")
				}
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					log.Warnf("Failed to send ping: %v. Assuming disconnect.", err)
				}
				return
			}
		}
	}
}

// disconnect forgets the connection. The player stays in the roster, unreachable,
// unless another connection already took over.
func (gs *GameServer) disconnect(cl *client) {
	m := gs.Sessions.Close(cl.id)
	if m == nil {
		return
	}
	l, err := gs.Store.Get(m.LobbyID)
	if err != nil {
		return
	}
	if l.Detach(m.PlayerID, cl.id) {
		l.Game.MarkUnreachable(m.PlayerID)
	}
}

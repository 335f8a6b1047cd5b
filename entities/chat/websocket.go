package chat

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"opsdesk/database"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"github.com/gorilla/websocket"
)

// ServeWS authenticates the handshake, upgrades the connection and relays
// events until the client goes away.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	token := req.URL.Query().Get("token")
	if token == "" {
		token = middlewares.BearerToken(req)
	}
	caller, err := middlewares.CallerFromToken(r.verifier, token)
	if err != nil {
		utils.SendError(w, r.logger, err)
		return
	}

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := newSession(conn, caller)
	logger := r.logger.With("session_id", s.ID, "user_id", caller.ID.Hex())

	sessionsActive.Inc()
	logger.Info("chat session connected")

	defer func() {
		r.hub.Leave(s)
		sessionsActive.Dec()
		logger.Info("chat session disconnected")
	}()

	go s.writePump()

	// The history page is queued before joining so no live message can
	// overtake it or show up in it twice.
	ctx := context.WithoutCancel(req.Context())
	if err := r.loadRoomHistory(ctx, s); err != nil {
		logger.Error("could not load room history", "error", err)
	}

	r.hub.Join(schemas.MESSAGE_ROOM_GENERAL, s)
	r.hub.Join(userRoom(caller.ID), s)

	r.readLoop(ctx, s, logger)
}

func (r *Relay) loadRoomHistory(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, database.MONGO_TIMEOUT)
	defer cancel()

	list, err := r.store.RecentInRoom(ctx, schemas.MESSAGE_ROOM_GENERAL, schemas.MESSAGE_HISTORY_LIMIT)
	if err != nil {
		return err
	}
	return r.emitHistory(ctx, s, EVENT_LOAD_MESSAGES, list)
}

func (r *Relay) readLoop(ctx context.Context, s *Session, logger *slog.Logger) {
	s.conn.SetReadLimit(WS_MAX_MESSAGE_SIZE)
	s.conn.SetReadDeadline(time.Now().Add(WS_PONG_WAIT))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(WS_PONG_WAIT))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("chat session read failed", "error", err)
			}
			return
		}

		if err := r.handle(ctx, s, raw); err != nil {
			logger.Warn("chat event dropped", "error", err)
		}
	}
}

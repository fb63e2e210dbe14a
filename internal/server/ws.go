package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/signsync/internal/server/api"
	"github.com/ayusman/signsync/internal/session"
)

const (
	streamWriteWait = 5 * time.Second
	streamReadLimit = 1 << 20
	streamIdle      = 2 * time.Minute
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type streamError struct {
	Error string `json:"error"`
}

// StreamHandler runs a predict loop over a WebSocket. Each connection gets
// its own session, destroyed when the connection closes.
type StreamHandler struct {
	predict  *api.PredictHandler
	sessions *session.Manager
	logger   *slog.Logger
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(p *api.PredictHandler, m *session.Manager, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{predict: p, sessions: m, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	h.sessions.GetOrCreate(id)
	defer h.sessions.Destroy(id)

	h.logger.Info("stream opened", "session", id, "remote", r.RemoteAddr)
	defer h.logger.Info("stream closed", "session", id)

	conn.SetReadLimit(streamReadLimit)

	for {
		conn.SetReadDeadline(time.Now().Add(streamIdle))
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("stream read failed", "session", id, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply any
		resp, err := h.predict.Predict(r.Context(), id, msg)
		if err != nil {
			reply = streamError{Error: err.Error()}
		} else {
			reply = resp
		}

		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Debug("stream write failed", "session", id, "error", err)
			return
		}
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/internal/chat"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler upgrades HTTP requests to websocket sessions and serves the
// operational endpoints.
type Handler struct {
	core     *chat.Core
	health   HealthChecker
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHandler creates the transport handler over the chat core.
func NewHandler(core *chat.Core, health HealthChecker) *Handler {
	return &Handler{
		core:   core,
		health: health,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bundled client is served from the same origin; standalone
			// clients connect from anywhere.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: core.Logger.With("component", "transport"),
	}
}

// HandleWebSocket serves GET /ws/{username}. The display name is validated
// before the upgrade so a bad name costs a plain 400, not a socket.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	username, err := h.core.Validator.ValidateUsername(r.PathValue("username"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "error", err)
		return
	}

	conn := NewConnection(ws, h.core.Config.SendBuffer)
	h.core.Metrics.IncrementConnections()
	h.log.Info("connection accepted", "identity", username, "conn_id", conn.ID)

	sess := chat.NewSession(h.core, username, conn)

	go h.writePump(conn)
	h.readPump(conn, sess, username)
}

// readPump owns the inbound side of the socket. It runs on the request
// goroutine and funnels every exit path through the session's disconnect.
func (h *Handler) readPump(conn *Connection, sess *chat.Session, identity string) {
	ctx := context.Background()

	defer func() {
		sess.Disconnect(ctx)
		h.core.Metrics.DecrementConnections()
		_ = conn.Conn.Close()
		h.log.Info("connection closed", "identity", identity, "conn_id", conn.ID)
	}()

	_ = conn.Conn.SetReadDeadline(time.Now().Add(h.core.Config.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(h.core.Config.ReadTimeout))
	})

	if err := sess.Connect(ctx); err != nil {
		h.log.Error("session setup failed", "identity", identity, "error", err)
		return
	}

	for {
		_, raw, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("read failed", "identity", identity, "error", err)
			}
			return
		}
		sess.HandleCommand(ctx, raw)
	}
}

// writePump owns the outbound side of the socket: it drains the send queue
// and keeps the peer alive with pings. When the queue closes it flushes a
// normal-closure frame and stops.
func (h *Handler) writePump(conn *Connection) {
	ticker := time.NewTicker(h.core.Config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-conn.SendChannel():
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(h.core.Config.WriteTimeout))
			if !ok {
				_ = conn.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Debug("write failed", "conn_id", conn.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(h.core.Config.WriteTimeout))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleHealth serves GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.health.HealthCheck(r.Context()); err != nil {
		h.log.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleStats serves GET /stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.core.Metrics.Snapshot())
}

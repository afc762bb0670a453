package chat

import "log/slog"

// Router fans payloads out to a target audience: one room, or the lobby. It
// never removes handles on send failure; disconnect detection belongs to the
// session that owns the connection.
type Router struct {
	registry *Registry
	log      *slog.Logger
}

// NewRouter creates a router over the given registry.
func NewRouter(registry *Registry, log *slog.Logger) *Router {
	return &Router{
		registry: registry,
		log:      log.With("component", "router"),
	}
}

// SendToRoom delivers the payload to every live connection in the room. A
// failed send to one handle never blocks delivery to the rest.
func (rt *Router) SendToRoom(roomName string, payload []byte) {
	for _, conn := range rt.registry.RoomConns(roomName) {
		if err := conn.SendMessage(payload); err != nil {
			rt.log.Warn("room send failed", "room", roomName, "conn_id", conn.GetID(), "error", err)
		}
	}
}

// SendToLobby delivers the payload to every connection in the lobby.
func (rt *Router) SendToLobby(payload []byte) {
	for _, conn := range rt.registry.LobbyConns() {
		if err := conn.SendMessage(payload); err != nil {
			rt.log.Warn("lobby send failed", "conn_id", conn.GetID(), "error", err)
		}
	}
}

// CloseRoom removes the room's registry entry and terminates every member
// connection with a normal-closure signal. The registry removal and member
// extraction happen in one step; the termination signals go out after, so no
// transport write ever runs under the registry lock.
func (rt *Router) CloseRoom(roomName string) {
	for _, conn := range rt.registry.removeRoom(roomName) {
		if err := conn.Close(); err != nil {
			rt.log.Warn("close failed", "room", roomName, "conn_id", conn.GetID(), "error", err)
		}
	}
}

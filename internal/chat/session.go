package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"chat-relay/internal/config"
	"chat-relay/internal/message"
	"chat-relay/internal/room"
	"chat-relay/internal/security"
	"chat-relay/internal/user"
)

// Core bundles the shared collaborators every session drives.
type Core struct {
	Registry  *Registry
	Router    *Router
	Gateway   Gateway
	Validator *security.InputValidator
	Metrics   *config.ServerMetrics
	Config    *config.ServerConfig
	Logger    *slog.Logger
}

// Session drives the protocol for one connection: lobby admission,
// auto-rejoin, the command loop, and disconnect cleanup. A session is in the
// lobby when currentRoom is empty, otherwise in exactly that room.
type Session struct {
	core     *Core
	identity string
	conn     Conn
	log      *slog.Logger

	user        *user.User
	currentRoom string
	done        bool
}

// NewSession creates the protocol state machine for one accepted connection.
func NewSession(core *Core, identity string, conn Conn) *Session {
	return &Session{
		core:     core,
		identity: identity,
		conn:     conn,
		log:      core.Logger.With("component", "session", "identity", identity),
	}
}

// Connect resolves the durable user record, admits the connection to the
// lobby, publishes the room lists, and attempts the auto-rejoin.
func (s *Session) Connect(ctx context.Context) error {
	u, err := s.core.Gateway.GetOrCreateUser(ctx, s.identity)
	if err != nil {
		return fmt.Errorf("resolve user '%s': %w", s.identity, err)
	}
	s.user = u

	s.core.Registry.AdmitToLobby(s.identity, s.conn)
	s.broadcastRoomLists(ctx)
	s.autoRejoin(ctx)
	return nil
}

// autoRejoin places the session straight back into its last room if that
// room still exists in persistence, bypassing the lobby.
func (s *Session) autoRejoin(ctx context.Context) {
	if s.user.LastRoomID == "" {
		return
	}

	last, err := s.core.Gateway.GetRoomByID(ctx, s.user.LastRoomID)
	if errors.Is(err, room.ErrNotFound) {
		s.send(LastRoomClosedFrame())
		return
	}
	if err != nil {
		s.log.Warn("auto-rejoin lookup failed", "error", err)
		return
	}

	s.core.Registry.MoveToRoom(s.identity, s.conn, last.Name)
	s.currentRoom = last.Name
	s.send(JoinConfirmFrame(s.user.ID == last.AdminID))
	s.replayHistory(ctx, last.ID)
	s.core.Router.SendToRoom(last.Name, InfoFrame(fmt.Sprintf("User '%s' has reconnected", s.identity)))
	s.log.Info("auto-rejoined room", "room", last.Name)
}

// HandleCommand dispatches one inbound frame. Commands that are invalid in
// the current state are dropped without feedback, matching the relay's
// original behavior; only unparseable frames earn an error reply.
func (s *Session) HandleCommand(ctx context.Context, raw []byte) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		if errors.Is(err, ErrMalformedFrame) {
			s.send(ErrorFrame("Invalid JSON format."))
		} else {
			s.send(ErrorFrame(err.Error()))
		}
		return
	}
	s.core.Metrics.IncrementCommands()

	switch cmd.Action {
	case ActionJoin:
		s.handleJoin(ctx, cmd.Room)
	case ActionLeave:
		if s.currentRoom != "" {
			s.handleLeave(ctx)
		}
	case ActionMessage:
		if s.currentRoom != "" {
			s.handleMessage(ctx, cmd.Message)
		}
	case ActionClose:
		if s.currentRoom != "" {
			s.handleClose(ctx)
		}
	}
}

// handleJoin is valid in any state; joining from inside a room moves the
// connection directly, with no leave notice for the prior room.
func (s *Session) handleJoin(ctx context.Context, roomName string) {
	roomName, err := s.core.Validator.ValidateRoomName(roomName)
	if err != nil {
		s.send(ErrorFrame(err.Error()))
		return
	}

	// Persistence first: the room must exist durably before the registry
	// places anyone in it.
	rm, err := s.core.Gateway.GetOrCreateRoom(ctx, roomName, s.user.ID)
	if err != nil {
		s.log.Error("join failed", "room", roomName, "error", err)
		s.send(ErrorFrame(fmt.Sprintf("could not join room '%s'", roomName)))
		return
	}
	if err := s.core.Gateway.SetLastRoom(ctx, s.user.ID, rm.ID); err != nil {
		s.log.Error("persisting last room failed", "room", roomName, "error", err)
		s.send(ErrorFrame(fmt.Sprintf("could not join room '%s'", roomName)))
		return
	}
	s.user.LastRoomID = rm.ID

	s.core.Registry.MoveToRoom(s.identity, s.conn, rm.Name)
	s.currentRoom = rm.Name

	s.send(JoinConfirmFrame(s.user.ID == rm.AdminID))
	s.replayHistory(ctx, rm.ID)
	s.core.Router.SendToRoom(rm.Name, InfoFrame(fmt.Sprintf("User '%s' has joined the room '%s'", s.identity, rm.Name)))
	s.broadcastRoomLists(ctx)
	s.log.Info("joined room", "room", rm.Name)
}

func (s *Session) handleLeave(ctx context.Context) {
	roomName := s.currentRoom
	s.core.Registry.MoveToLobby(s.identity, roomName)
	s.currentRoom = ""

	s.core.Router.SendToRoom(roomName, InfoFrame(fmt.Sprintf("User '%s' has left the room", s.identity)))
	s.broadcastRoomLists(ctx)
	s.log.Info("left room", "room", roomName)
}

// handleMessage persists the message when its room still exists durably and
// relays it to the live members either way.
func (s *Session) handleMessage(ctx context.Context, text string) {
	text, err := s.core.Validator.ValidateMessage(text)
	if err != nil {
		s.send(ErrorFrame(err.Error()))
		return
	}

	rm, err := s.core.Gateway.GetRoomByName(ctx, s.currentRoom)
	switch {
	case err == nil:
		msg := &message.Message{
			Text:      text,
			Author:    s.identity,
			RoomID:    rm.ID,
			Timestamp: time.Now().UTC(),
		}
		if err := s.core.Gateway.AppendMessage(ctx, msg); err != nil {
			s.log.Error("message persist failed", "room", s.currentRoom, "error", err)
			s.send(ErrorFrame("could not deliver message"))
			return
		}
	case errors.Is(err, room.ErrNotFound):
		// The room record vanished under us; the message still reaches the
		// live members, it just leaves no durable trace.
		s.log.Warn("room missing from persistence, relaying unpersisted", "room", s.currentRoom)
	default:
		s.log.Error("room lookup failed", "room", s.currentRoom, "error", err)
		s.send(ErrorFrame("could not deliver message"))
		return
	}

	s.core.Router.SendToRoom(s.currentRoom, MessageFrame(s.identity, text))
	s.core.Metrics.IncrementMessages()
}

// handleClose tears the room down: closure notice, forced termination of
// every member connection, durable deletion. Only the room's admin may do
// this; anyone else is ignored.
func (s *Session) handleClose(ctx context.Context) {
	roomName := s.currentRoom

	rm, err := s.core.Gateway.GetRoomByName(ctx, roomName)
	if errors.Is(err, room.ErrNotFound) {
		s.log.Debug("close ignored, room not persisted", "room", roomName)
		return
	}
	if err != nil {
		s.log.Error("room lookup failed", "room", roomName, "error", err)
		s.send(ErrorFrame(fmt.Sprintf("could not close room '%s'", roomName)))
		return
	}
	if rm.AdminID != s.user.ID {
		s.log.Debug("close ignored, not admin", "room", roomName)
		return
	}

	s.core.Router.SendToRoom(roomName, InfoFrame(fmt.Sprintf("Room '%s' has been closed by the admin.", roomName)))
	s.core.Router.CloseRoom(roomName)
	s.currentRoom = ""

	if err := s.core.Gateway.DeleteRoom(ctx, rm.ID); err != nil {
		// Members are already terminated; the durable record is now the
		// only leftover, so log loudly and move on.
		s.log.Error("room deletion failed", "room", roomName, "error", err)
	}

	s.broadcastRoomLists(ctx)
	s.log.Info("closed room", "room", roomName)
}

// Disconnect runs the terminal cleanup exactly once. Both the read loop's
// exit and a forced room closure can funnel here.
func (s *Session) Disconnect(ctx context.Context) {
	if s.done {
		return
	}
	s.done = true

	if s.currentRoom != "" {
		roomName := s.currentRoom
		s.currentRoom = ""
		s.core.Registry.RemoveFromRoom(s.identity, roomName)
		s.core.Router.SendToRoom(roomName, InfoFrame(fmt.Sprintf("User '%s' has left the room", s.identity)))
	} else {
		s.core.Registry.RemoveFromLobby(s.identity)
	}

	s.broadcastRoomLists(ctx)
	_ = s.conn.Close()
	s.log.Info("disconnected")
}

// broadcastRoomLists publishes both room lists to everyone in the lobby:
// the live in-memory view and the persisted view. They are intentionally
// distinct sources of truth.
func (s *Session) broadcastRoomLists(ctx context.Context) {
	s.core.Router.SendToLobby(ActiveRoomListFrame(s.core.Registry.ActiveRoomNames()))

	rooms, err := s.core.Gateway.ListRooms(ctx)
	if err != nil {
		s.log.Warn("listing persisted rooms failed", "error", err)
		return
	}
	names := lo.Map(rooms, func(r *room.Room, _ int) string { return r.Name })
	s.core.Router.SendToLobby(ExistingRoomListFrame(names))
}

// replayHistory streams the room's persisted messages to this connection in
// timestamp order.
func (s *Session) replayHistory(ctx context.Context, roomID string) {
	msgs, err := s.core.Gateway.ListMessages(ctx, roomID, 0, s.core.Config.HistoryPageSize)
	if err != nil {
		s.log.Warn("history replay failed", "room_id", roomID, "error", err)
		return
	}
	for _, m := range msgs {
		s.send(MessageFrame(m.Author, m.Text))
	}
}

func (s *Session) send(payload []byte) {
	if err := s.conn.SendMessage(payload); err != nil {
		s.log.Debug("send failed", "error", err)
	}
}

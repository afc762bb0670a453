package chat

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Client actions.
const (
	ActionJoin    = "join"
	ActionLeave   = "leave"
	ActionMessage = "message"
	ActionClose   = "close"
)

// ErrMalformedFrame is returned when an inbound frame is not valid JSON.
var ErrMalformedFrame = errors.New("malformed frame")

var validate = validator.New()

// Command is the single inbound frame type.
type Command struct {
	Action  string `json:"action" validate:"required,oneof=join leave message close"`
	Room    string `json:"room,omitempty" validate:"required_if=Action join"`
	Message string `json:"message,omitempty" validate:"required_if=Action message"`
}

// ParseCommand decodes and validates one inbound frame. A JSON syntax
// problem yields ErrMalformedFrame; a shape problem yields a descriptive
// validation error.
func ParseCommand(raw []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return nil, ErrMalformedFrame
	}
	if err := validate.Struct(&cmd); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0]
			if field.Field() == "Action" {
				return nil, fmt.Errorf("unknown or missing action")
			}
			return nil, fmt.Errorf("'%s' is required for action '%s'", field.Field(), cmd.Action)
		}
		return nil, err
	}
	return &cmd, nil
}

// Outbound frame types.
const (
	frameActiveRoomList   = "active_room_list"
	frameExistingRoomList = "existing_room_list"
	frameJoinConfirm      = "join_confirm"
	frameMessage          = "message"
	frameInfo             = "info"
	frameLastRoomClosed   = "last_room_closed"
	frameError            = "error"
)

type roomListFrame struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms"`
}

type joinConfirmFrame struct {
	Type    string `json:"type"`
	IsAdmin bool   `json:"isAdmin"`
}

type messageFrame struct {
	Type    string `json:"type"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type noticeFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type bareFrame struct {
	Type string `json:"type"`
}

// encodeFrame marshals an outbound frame. The frame structs above contain
// nothing json.Marshal can reject.
func encodeFrame(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}

// ActiveRoomListFrame carries the rooms with at least one live member.
func ActiveRoomListFrame(rooms []string) []byte {
	return encodeFrame(roomListFrame{Type: frameActiveRoomList, Rooms: rooms})
}

// ExistingRoomListFrame carries the rooms known to persistence.
func ExistingRoomListFrame(rooms []string) []byte {
	return encodeFrame(roomListFrame{Type: frameExistingRoomList, Rooms: rooms})
}

// JoinConfirmFrame acknowledges a join and tells the client whether it
// administers the room.
func JoinConfirmFrame(isAdmin bool) []byte {
	return encodeFrame(joinConfirmFrame{Type: frameJoinConfirm, IsAdmin: isAdmin})
}

// MessageFrame carries one chat message attributed to its sender.
func MessageFrame(sender, text string) []byte {
	return encodeFrame(messageFrame{Type: frameMessage, Sender: sender, Message: text})
}

// InfoFrame carries a human-readable room event notice.
func InfoFrame(text string) []byte {
	return encodeFrame(noticeFrame{Type: frameInfo, Message: text})
}

// LastRoomClosedFrame tells a reconnecting client its last room is gone.
func LastRoomClosedFrame() []byte {
	return encodeFrame(bareFrame{Type: frameLastRoomClosed})
}

// ErrorFrame reports a problem with the client's last frame.
func ErrorFrame(text string) []byte {
	return encodeFrame(noticeFrame{Type: frameError, Message: text})
}

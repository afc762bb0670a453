package message

import "time"

// Message is one persisted chat message. Author is the sender's display
// name; RoomID ties it to the room's durable record.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

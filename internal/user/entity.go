package user

// User is the durable record behind an identity. The identity itself is the
// unique display name; LastRoomID points at the room a reconnecting client
// should be placed back into.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	LastRoomID string `json:"last_room_id,omitempty"`
}

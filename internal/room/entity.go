package room

import "time"

// Room is a named chat space. AdminID is the identity that created it and is
// never changed by later joins.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"admin_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

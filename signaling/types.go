package signaling

import (
	"context"
	"time"
)

// Participant is one connection's identity inside a room. Exactly one
// participant exists per joined connection.
type Participant struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	RoomID       string `json:"-"`
}

// RoomStatus is the externally visible snapshot of one room.
type RoomStatus struct {
	RoomID       string        `json:"roomId"`
	MemberCount  int           `json:"memberCount"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// RoomReader is the read-only slice of the relay the HTTP API needs.
type RoomReader interface {
	Status(roomID string) (*RoomStatus, bool)
}

// Conn is the transport handle the relay drives: fire-and-forget named
// event sends plus forced termination. Send must never block on a slow
// peer.
type Conn interface {
	Send(ctx context.Context, event string, data interface{}) error
	Close() error
}

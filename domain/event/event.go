// Package event defines the outbound events emitted by the protocol
// engine towards connected clients. Each event knows its wire name;
// payload shapes follow the client protocol exactly.
package event

import (
	"time"

	"community-hub/domain"

	"github.com/google/uuid"
)

// Event is an outbound client event.
type Event interface {
	Name() string
}

type UserJoined struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (UserJoined) Name() string { return "user-joined" }

type RoomUsers struct {
	Users []string `json:"users"`
}

func (RoomUsers) Name() string { return "room-users" }

type RoomUserCount struct {
	Count int         `json:"count"`
	Room  domain.Room `json:"room"`
}

func (RoomUserCount) Name() string { return "room-user-count" }

type NewMessage struct {
	ID          uuid.UUID          `json:"id"`
	Room        domain.Room        `json:"room"`
	Message     string             `json:"message"`
	Username    string             `json:"username"`
	UserID      string             `json:"userId"`
	Timestamp   time.Time          `json:"timestamp"`
	MessageType domain.MessageType `json:"messageType"`
}

func (NewMessage) Name() string { return "new-message" }

type UserTyping struct {
	Username string `json:"username"`
	Typing   bool   `json:"typing"`
}

func (UserTyping) Name() string { return "user-typing" }

type UserLeft struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (UserLeft) Name() string { return "user-left" }

type Error struct {
	Message string `json:"message"`
}

func (Error) Name() string { return "error" }

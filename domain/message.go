package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

const MaxMessageLength = 1000

// Identity is a client-asserted pair of stable id and display name.
// It is not authenticated; it only scopes presence and message authorship.
type Identity struct {
	UserID   string
	Username string
}

// Message represents a stored chat message.
type Message struct {
	ID        uuid.UUID
	Room      Room
	Username  string
	UserID    string
	Content   string
	Type      MessageType
	Timestamp time.Time
}

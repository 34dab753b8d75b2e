package services

import (
	"fmt"
	"time"

	"community-hub/contract"
	"community-hub/domain"
	"community-hub/errors"

	"github.com/samber/lo"
)

// activeWindow is how far back a message still marks its author as active.
const activeWindow = time.Hour

type IChatService interface {
	RoomHistory(room domain.Room, page, limit int) (RoomHistory, error)
	Rooms() ([]RoomActivity, error)
}

type RoomHistory struct {
	Room       domain.Room
	Messages   []domain.Message
	Pagination Pagination
}

type Pagination struct {
	CurrentPage   int
	TotalPages    int
	TotalMessages int
	HasMore       bool
}

type LatestMessage struct {
	Message   string
	Username  string
	Timestamp time.Time
}

type RoomActivity struct {
	Name          domain.Room
	LatestMessage *LatestMessage
	MessageCount  int
	ActiveUsers   int
	Description   string
}

// ChatService serves the read-only room surface around the live engine:
// paginated history and the catalogue enriched with activity stats.
type ChatService struct {
	archive contract.IMessageArchive
}

func NewChatService(archive contract.IMessageArchive) *ChatService {
	return &ChatService{archive: archive}
}

func (s *ChatService) RoomHistory(room domain.Room, page, limit int) (RoomHistory, error) {
	if !domain.ValidRoom(room) {
		return RoomHistory{}, errors.ErrInvalidRoom
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	messages, total, err := s.archive.Messages(room, page, limit)
	if err != nil {
		return RoomHistory{}, fmt.Errorf("fetching history for %s: %w", room, err)
	}

	skip := (page - 1) * limit
	return RoomHistory{
		Room:     room,
		Messages: messages,
		Pagination: Pagination{
			CurrentPage:   page,
			TotalPages:    (total + limit - 1) / limit,
			TotalMessages: total,
			HasMore:       skip+len(messages) < total,
		},
	}, nil
}

// Rooms enumerates the catalogue with per-room activity: latest message
// preview, stored message count, and distinct authors of the last hour.
func (s *ChatService) Rooms() ([]RoomActivity, error) {
	cutoff := time.Now().UTC().Add(-activeWindow)

	activities := make([]RoomActivity, 0, len(domain.Rooms))
	for _, room := range domain.Rooms {
		latest, err := s.archive.Latest(room)
		if err != nil {
			return nil, fmt.Errorf("latest message for %s: %w", room, err)
		}
		count, err := s.archive.Count(room)
		if err != nil {
			return nil, fmt.Errorf("message count for %s: %w", room, err)
		}
		active, err := s.archive.ActiveUsers(room, cutoff)
		if err != nil {
			return nil, fmt.Errorf("active users for %s: %w", room, err)
		}

		activities = append(activities, RoomActivity{
			Name:          room,
			LatestMessage: toLatestMessage(latest),
			MessageCount:  count,
			ActiveUsers:   active,
			Description:   room.Description(),
		})
	}
	return activities, nil
}

func toLatestMessage(message *domain.Message) *LatestMessage {
	if message == nil {
		return nil
	}
	preview := message.Content
	if runes := []rune(preview); len(runes) > 100 {
		preview = string(runes[:100])
	}
	return lo.ToPtr(LatestMessage{
		Message:   preview,
		Username:  message.Username,
		Timestamp: message.Timestamp,
	})
}

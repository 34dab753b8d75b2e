//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"community-hub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MessageRepository persists chat messages in BadgerDB. It is the single
// source of truth for message ids and timestamps, and the retention
// window is enforced through entry TTLs: expired messages disappear
// without any cleanup job.
type MessageRepository struct {
	db        *badger.DB
	log       *slog.Logger
	retention time.Duration
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, retention time.Duration) MessageRepository {
	return MessageRepository{db: db, log: log, retention: retention}
}

type diskMessage struct {
	ID       string `json:"id"`
	Room     string `json:"room"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Content  string `json:"content"`
	Type     string `json:"type"`
	At       int64  `json:"at"`
}

// Save assigns the canonical id and timestamp, then stores the message.
// The key is formatted as "msg:{room}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) Save(_ context.Context, room domain.Room, username, userID, content string,
	messageType domain.MessageType) (domain.Message, error) {
	message := domain.Message{
		ID:        uuid.New(),
		Room:      room,
		Username:  username,
		UserID:    userID,
		Content:   content,
		Type:      messageType,
		Timestamp: time.Now().UTC(),
	}

	key := messageKey(room, message.Timestamp, message.ID)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, err
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, bytes)
		if m.retention > 0 {
			entry = entry.WithTTL(m.retention)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("storing message: %w", err)
	}
	return message, nil
}

// Messages returns one page of a room's history, oldest first within the
// page, plus the total stored count. Page 1 holds the newest messages,
// mirroring a classic "latest first, then reversed" pagination.
func (m MessageRepository) Messages(room domain.Room, page, limit int) ([]domain.Message, int, error) {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * limit

	var raw [][]byte
	total := 0
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(room)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this room, then walk back.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if total >= skip && len(raw) < limit {
				item := it.Item()
				err := item.Value(func(value []byte) error {
					raw = append(raw, append([]byte{}, value...))
					return nil
				})
				if err != nil {
					return err
				}
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		message, err := unmarshalMessage(b)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, message)
	}
	// Reverse to chronological order inside the page.
	lo.Reverse(messages)
	return messages, total, nil
}

// Latest returns a room's most recent message, or nil if none is stored.
func (m MessageRepository) Latest(room domain.Room) (*domain.Message, error) {
	var latest *domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(room)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		it.Seek(seekKey)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		return it.Item().Value(func(value []byte) error {
			message, err := unmarshalMessage(value)
			if err != nil {
				return err
			}
			latest = &message
			return nil
		})
	})
	return latest, err
}

func (m MessageRepository) Count(room domain.Room) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(room)

		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// ActiveUsers counts the distinct authors who posted in the room since
// the given instant. The padded timestamp in the key lets the scan start
// directly at the cutoff instead of walking the whole room.
func (m MessageRepository) ActiveUsers(room domain.Room, since time.Time) (int, error) {
	users := make(map[string]struct{})
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(room)
		seekKey := append(append([]byte{}, prefix...), []byte(fmt.Sprintf("%019d", since.UnixNano()))...)

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(value, &dm); err != nil {
					return err
				}
				users[dm.UserID] = struct{}{}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return len(users), err
}

func messageKey(room domain.Room, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", room, at.UnixNano(), id))
}

func roomPrefix(room domain.Room) []byte {
	return []byte(fmt.Sprintf("msg:%s:", room))
}

func unmarshalMessage(value []byte) (domain.Message, error) {
	var dm diskMessage
	if err := json.Unmarshal(value, &dm); err != nil {
		return domain.Message{}, err
	}
	return toMessage(dm)
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:       message.ID.String(),
		Room:     string(message.Room),
		Username: message.Username,
		UserID:   message.UserID,
		Content:  message.Content,
		Type:     string(message.Type),
		At:       message.Timestamp.UnixNano(),
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		Room:      domain.Room(dm.Room),
		Username:  dm.Username,
		UserID:    dm.UserID,
		Content:   dm.Content,
		Type:      domain.MessageType(dm.Type),
		Timestamp: time.Unix(0, dm.At).UTC(),
	}, nil
}

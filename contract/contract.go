//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"community-hub/domain"
	"community-hub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connection's outbound side. Consume must not block
// the caller beyond its buffer; slow consumers lose events.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry maps open connections to their sink and, once joined, their
// identity and current room. It also owns the per-room broadcast groups.
type IRegistry interface {
	Register(conn domain.ConnID, sink EventSink)
	SetRoom(conn domain.ConnID, identity domain.Identity, room domain.Room) (previous *domain.Session)
	Lookup(conn domain.ConnID) (domain.Session, bool)
	Remove(conn domain.ConnID) (domain.Session, bool)
	Sink(conn domain.ConnID) (EventSink, bool)
	SinksForRoom(room domain.Room, exclude ...domain.ConnID) []EventSink
}

// IMembership tracks which distinct identities occupy each room,
// independent of how many connections each identity holds.
type IMembership interface {
	Join(room domain.Room, userID string) int
	Leave(room domain.Room, userID string) int
	Members(room domain.Room) []string
	Count(room domain.Room) int
}

// IMessageStore is the persistence adapter. It assigns the canonical
// message id and timestamp; the engine never fabricates either.
type IMessageStore interface {
	Save(ctx context.Context, room domain.Room, username, userID, content string, messageType domain.MessageType) (domain.Message, error)
}

// IMessageArchive is the read side consumed by the REST collaborator.
type IMessageArchive interface {
	Messages(room domain.Room, page, limit int) ([]domain.Message, int, error)
	Latest(room domain.Room) (*domain.Message, error)
	Count(room domain.Room) (int, error)
	ActiveUsers(room domain.Room, since time.Time) (int, error)
}

type IEngine interface {
	Dispatch(ctx context.Context, cmd domain.Command) error
}

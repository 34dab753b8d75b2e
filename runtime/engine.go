package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"community-hub/contract"
	"community-hub/domain"
	"community-hub/domain/event"
	"community-hub/errors"

	"github.com/go-playground/validator/v10"
	"log/slog"
)

// Ensure *Engine implements the contract.Worker interface at compile time.
var _ contract.Worker = (*Engine)(nil)

var validate = validator.New()

// Engine is the presence and broadcast coordinator. A single goroutine
// (Run) consumes every command, so all registry and membership mutations
// for one event complete before the next event is observed. The only
// suspension point is message persistence, which runs in its own
// goroutine and re-enters the loop as a storeResult command; the room is
// therefore broadcast as it exists at completion time, while the author
// identity is the snapshot taken at send time.
type Engine struct {
	log        *slog.Logger
	registry   contract.IRegistry
	membership contract.IMembership
	store      contract.IMessageStore
	commands   chan domain.Command
}

func NewEngine(log *slog.Logger, registry contract.IRegistry, membership contract.IMembership,
	store contract.IMessageStore, bufferSize int) *Engine {
	return &Engine{
		log:        log,
		registry:   registry,
		membership: membership,
		store:      store,
		commands:   make(chan domain.Command, bufferSize),
	}
}

// storeResult re-enters the dispatch loop once persistence resolves.
type storeResult struct {
	ConnID domain.ConnID
	Stored domain.Message
	Err    error
}

func (c storeResult) Conn() domain.ConnID { return c.ConnID }

// Dispatch hands a command to the engine. It blocks when the command
// channel is full: transport read loops absorb the backpressure instead
// of presence events being dropped.
func (e *Engine) Dispatch(ctx context.Context, cmd domain.Command) error {
	select {
	case e.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.log.Debug("Context done, stopping engine")
			return nil
		case cmd, ok := <-e.commands:
			if !ok {
				e.log.Debug("Command channel closed")
				return nil
			}
			e.handle(ctx, cmd)
		}
	}
}

func (e *Engine) handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.JoinRoomCommand:
		e.handleJoin(ctx, c)
	case domain.SendMessageCommand:
		e.handleSend(ctx, c)
	case domain.TypingCommand:
		e.handleTyping(ctx, c)
	case domain.DisconnectCommand:
		e.handleDisconnect(ctx, c)
	case storeResult:
		e.handleStoreResult(ctx, c)
	default:
		e.log.Warn(fmt.Sprintf("Unknown command %T", cmd))
	}
}

func (e *Engine) handleJoin(ctx context.Context, cmd domain.JoinRoomCommand) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	if err := validate.Struct(cmd); err != nil {
		e.unicastError(ctx, cmd.ConnID, errors.MsgMissingFields)
		return
	}
	if !domain.ValidRoom(cmd.Room) {
		e.unicastError(ctx, cmd.ConnID, errors.MsgInvalidRoom)
		return
	}

	identity := domain.Identity{UserID: cmd.UserID, Username: cmd.Username}
	previous := e.registry.SetRoom(cmd.ConnID, identity, cmd.Room)
	if previous != nil {
		// The old room is left silently: no user-left or count update is
		// sent to it, matching the client protocol.
		e.membership.Leave(previous.Room, previous.Identity.UserID)
	}
	e.membership.Join(cmd.Room, cmd.UserID)

	now := time.Now().UTC()
	e.broadcast(ctx, cmd.Room, event.UserJoined{
		UserID:    cmd.UserID,
		Username:  cmd.Username,
		Message:   fmt.Sprintf("%s joined the room", cmd.Username),
		Timestamp: now,
	}, cmd.ConnID)

	e.unicast(ctx, cmd.ConnID, event.RoomUsers{Users: e.membership.Members(cmd.Room)})

	// The count is recomputed at broadcast time, never cached.
	e.broadcast(ctx, cmd.Room, event.RoomUserCount{
		Count: e.membership.Count(cmd.Room),
		Room:  cmd.Room,
	})

	e.log.Info("User joined room", "room", cmd.Room, "user_id", cmd.UserID, "username", cmd.Username)
}

func (e *Engine) handleSend(ctx context.Context, cmd domain.SendMessageCommand) {
	if err := validate.Struct(cmd); err != nil {
		e.unicastError(ctx, cmd.ConnID, errors.MsgMissingFields)
		return
	}
	if !domain.ValidRoom(cmd.Room) {
		e.unicastError(ctx, cmd.ConnID, errors.MsgInvalidRoom)
		return
	}
	content := strings.TrimSpace(cmd.Message)
	if content == "" {
		e.unicastError(ctx, cmd.ConnID, errors.MsgEmptyMessage)
		return
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageLength {
		e.unicastError(ctx, cmd.ConnID, errors.MsgMessageTooLong)
		return
	}

	// Persistence is the only suspension point. It runs off-loop and the
	// outcome re-enters through the command channel; nothing is broadcast
	// before the store has assigned the canonical id and timestamp.
	go func() {
		stored, err := e.store.Save(ctx, cmd.Room, cmd.Username, cmd.UserID, content, domain.MessageTypeText)
		select {
		case e.commands <- storeResult{ConnID: cmd.ConnID, Stored: stored, Err: err}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) handleStoreResult(ctx context.Context, res storeResult) {
	if res.Err != nil {
		e.log.Error("Failed to store message", "error", res.Err)
		// No retry; the sender must resend.
		e.unicastError(ctx, res.ConnID, errors.MsgSendFailed)
		return
	}

	// Sender included: its UI reflects the durable timestamp, not local time.
	e.broadcast(ctx, res.Stored.Room, event.NewMessage{
		ID:          res.Stored.ID,
		Room:        res.Stored.Room,
		Message:     res.Stored.Content,
		Username:    res.Stored.Username,
		UserID:      res.Stored.UserID,
		Timestamp:   res.Stored.Timestamp,
		MessageType: res.Stored.Type,
	})
}

func (e *Engine) handleTyping(ctx context.Context, cmd domain.TypingCommand) {
	if err := validate.Struct(cmd); err != nil {
		e.unicastError(ctx, cmd.ConnID, errors.MsgMissingFields)
		return
	}
	// Stateless relay: the engine keeps no typing bookkeeping.
	e.broadcast(ctx, cmd.Room, event.UserTyping{
		Username: cmd.Username,
		Typing:   cmd.Typing,
	}, cmd.ConnID)
}

func (e *Engine) handleDisconnect(ctx context.Context, cmd domain.DisconnectCommand) {
	session, ok := e.registry.Remove(cmd.ConnID)
	if !ok {
		// Never joined a room, nothing to announce.
		return
	}

	e.membership.Leave(session.Room, session.Identity.UserID)

	now := time.Now().UTC()
	e.broadcast(ctx, session.Room, event.UserLeft{
		UserID:    session.Identity.UserID,
		Username:  session.Identity.Username,
		Message:   fmt.Sprintf("%s left the room", session.Identity.Username),
		Timestamp: now,
	})
	e.broadcast(ctx, session.Room, event.RoomUserCount{
		Count: e.membership.Count(session.Room),
		Room:  session.Room,
	})

	e.log.Info("User disconnected from room",
		"room", session.Room, "user_id", session.Identity.UserID)
}

func (e *Engine) broadcast(ctx context.Context, room domain.Room, evt event.Event, exclude ...domain.ConnID) {
	for _, sink := range e.registry.SinksForRoom(room, exclude...) {
		if err := sink.Consume(ctx, evt); err != nil {
			e.log.Debug("Sink rejected event", "event", evt.Name(), "error", err)
		}
	}
}

func (e *Engine) unicast(ctx context.Context, conn domain.ConnID, evt event.Event) {
	sink, ok := e.registry.Sink(conn)
	if !ok {
		// Connection vanished while the event was in flight.
		return
	}
	if err := sink.Consume(ctx, evt); err != nil {
		e.log.Debug("Sink rejected event", "event", evt.Name(), "error", err)
	}
}

func (e *Engine) unicastError(ctx context.Context, conn domain.ConnID, message string) {
	e.unicast(ctx, conn, event.Error{Message: message})
}

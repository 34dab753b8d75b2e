// Package ws is the websocket transport: it upgrades connections,
// translates wire events into engine commands, and pumps engine events
// back to the client. All protocol decisions live in the engine; this
// layer only moves payloads.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"community-hub/contract"
	"community-hub/domain"
	"community-hub/domain/event"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	eventJoinRoom    = "join-room"
	eventSendMessage = "send-message"
	eventTypingStart = "typing-start"
	eventTypingStop  = "typing-stop"
)

// Envelope is the wire frame in both directions: an event name plus its
// payload.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type outEnvelope struct {
	Event   string      `json:"event"`
	Payload event.Event `json:"payload"`
}

type joinRoomPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

type sendMessagePayload struct {
	Room     string `json:"room"`
	Message  string `json:"message"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

type typingPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type Handler struct {
	log        *slog.Logger
	engine     contract.IEngine
	registry   contract.IRegistry
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, engine contract.IEngine, registry contract.IRegistry, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		engine:     engine,
		registry:   registry,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origin filtering happens at the CORS layer of the REST
				// surface, not here.
				return true
			},
		},
	}
}

// Handle runs one connection end to end: upgrade, register, read loop,
// and guaranteed disconnect dispatch on the way out.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Websocket upgrade failed", "error", err)
		return
	}

	ctx := r.Context()
	connID := domain.ConnID(uuid.NewString())
	sink := NewSink(h.bufferSize)
	h.registry.Register(connID, sink)

	h.log.Info("Connection opened", "conn_id", connID)

	done := make(chan struct{})
	go h.writePump(ctx, conn, sink, done)

	h.readLoop(ctx, conn, connID)

	// The engine is the only one allowed to mutate presence state, so the
	// teardown goes through it like every other event.
	if err := h.engine.Dispatch(ctx, domain.DisconnectCommand{ConnID: connID}); err != nil {
		h.log.Warn("Disconnect not dispatched", "conn_id", connID, "error", err)
	}

	close(done)
	_ = conn.Close()
	h.log.Info("Connection closed", "conn_id", connID)
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, connID domain.ConnID) {
	for {
		var envelope Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Websocket read error", "conn_id", connID, "error", err)
			}
			return
		}

		cmd, ok := h.toCommand(connID, envelope)
		if !ok {
			h.log.Debug("Unknown event", "conn_id", connID, "event", envelope.Event)
			continue
		}
		if err := h.engine.Dispatch(ctx, cmd); err != nil {
			h.log.Warn("Command not dispatched", "conn_id", connID, "error", err)
			return
		}
	}
}

// toCommand maps a wire envelope onto the engine's command union.
// Undecodable payloads become zero-valued commands: the engine rejects
// them as missing fields, exactly like any other malformed input.
func (h *Handler) toCommand(connID domain.ConnID, envelope Envelope) (domain.Command, bool) {
	switch envelope.Event {
	case eventJoinRoom:
		var p joinRoomPayload
		h.decode(envelope.Payload, &p)
		return domain.JoinRoomCommand{
			ConnID:   connID,
			Room:     domain.Room(p.Room),
			Username: p.Username,
			UserID:   p.UserID,
		}, true
	case eventSendMessage:
		var p sendMessagePayload
		h.decode(envelope.Payload, &p)
		return domain.SendMessageCommand{
			ConnID:   connID,
			Room:     domain.Room(p.Room),
			Message:  p.Message,
			Username: p.Username,
			UserID:   p.UserID,
		}, true
	case eventTypingStart, eventTypingStop:
		var p typingPayload
		h.decode(envelope.Payload, &p)
		return domain.TypingCommand{
			ConnID:   connID,
			Room:     domain.Room(p.Room),
			Username: p.Username,
			Typing:   envelope.Event == eventTypingStart,
		}, true
	default:
		return nil, false
	}
}

func (h *Handler) decode(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		h.log.Debug(fmt.Sprintf("Malformed payload: %v", err))
	}
}

// writePump is the single writer on the websocket connection; gorilla
// connections do not support concurrent writes.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, sink *Sink, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case evt := <-sink.Events:
			if err := conn.WriteJSON(outEnvelope{Event: evt.Name(), Payload: evt}); err != nil {
				h.log.Debug("Websocket write failed", "error", err)
				return
			}
		}
	}
}

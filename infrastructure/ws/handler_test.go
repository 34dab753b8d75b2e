package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"community-hub/domain"
	"community-hub/domain/event"

	"github.com/stretchr/testify/require"
)

func testHandler() *Handler {
	return NewHandler(slog.Default(), nil, nil, 8)
}

func envelope(name, payload string) Envelope {
	return Envelope{Event: name, Payload: json.RawMessage(payload)}
}

func TestToCommand_JoinRoom(t *testing.T) {
	req := require.New(t)
	h := testHandler()

	cmd, ok := h.toCommand("c1", envelope("join-room",
		`{"room":"General","username":"Alice","userId":"u1"}`))

	req.True(ok)
	req.Equal(domain.JoinRoomCommand{
		ConnID:   "c1",
		Room:     domain.RoomGeneral,
		Username: "Alice",
		UserID:   "u1",
	}, cmd)
}

func TestToCommand_SendMessage(t *testing.T) {
	req := require.New(t)
	h := testHandler()

	cmd, ok := h.toCommand("c1", envelope("send-message",
		`{"room":"Food Help","message":"hello","username":"Alice","userId":"u1"}`))

	req.True(ok)
	req.Equal(domain.SendMessageCommand{
		ConnID:   "c1",
		Room:     domain.RoomFoodHelp,
		Message:  "hello",
		Username: "Alice",
		UserID:   "u1",
	}, cmd)
}

func TestToCommand_Typing_Maps_Start_And_Stop(t *testing.T) {
	req := require.New(t)
	h := testHandler()

	start, ok := h.toCommand("c1", envelope("typing-start",
		`{"room":"General","username":"Alice"}`))
	req.True(ok)
	req.Equal(domain.TypingCommand{
		ConnID: "c1", Room: domain.RoomGeneral, Username: "Alice", Typing: true,
	}, start)

	stop, ok := h.toCommand("c1", envelope("typing-stop",
		`{"room":"General","username":"Alice"}`))
	req.True(ok)
	req.Equal(domain.TypingCommand{
		ConnID: "c1", Room: domain.RoomGeneral, Username: "Alice", Typing: false,
	}, stop)
}

func TestToCommand_Unknown_Event(t *testing.T) {
	req := require.New(t)
	h := testHandler()

	_, ok := h.toCommand("c1", envelope("leave-room", `{}`))

	req.False(ok)
}

func TestToCommand_Malformed_Payload_Yields_Empty_Command(t *testing.T) {
	req := require.New(t)
	h := testHandler()

	// Broken JSON still produces a command; downstream validation will
	// reject the empty fields.
	cmd, ok := h.toCommand("c1", envelope("join-room", `{"room":`))

	req.True(ok)
	req.Equal(domain.JoinRoomCommand{ConnID: "c1"}, cmd)
}

func TestSink_Delivers_And_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	ctx := context.Background()

	first := event.UserTyping{Username: "Alice", Typing: true}
	second := event.UserTyping{Username: "Alice", Typing: false}

	// When one event fits and the next does not
	req.NoError(sink.Consume(ctx, first))
	req.NoError(sink.Consume(ctx, second))

	// Then only the first was queued; the overflow was dropped
	select {
	case got := <-sink.Events:
		req.Equal(first, got)
	case <-time.After(time.Second):
		t.Fatal("no event queued")
	}
	select {
	case got := <-sink.Events:
		t.Fatalf("unexpected queued event: %v", got)
	default:
	}
}

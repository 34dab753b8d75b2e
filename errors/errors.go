package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrInvalidRoom        = fmt.Errorf("invalid chat room")
	ErrMissingField       = fmt.Errorf("missing required field")
	ErrEmptyMessage       = fmt.Errorf("message is empty")
	ErrMessageTooLong     = fmt.Errorf("message too long")
	ErrPersistenceFailure = fmt.Errorf("message could not be stored")
	ErrUnknownConnection  = fmt.Errorf("unknown connection")
)

// Client-facing error texts, kept identical to what the web client expects.
const (
	MsgInvalidRoom    = "Invalid chat room"
	MsgMissingFields  = "Missing required fields"
	MsgEmptyMessage   = "Message cannot be empty"
	MsgMessageTooLong = "Message too long (max 1000 characters)"
	MsgSendFailed     = "Failed to send message"
	MsgJoinFailed     = "Failed to join room"
)

package domain

// ConnID identifies one open transport session. Opaque, unique per session.
type ConnID string

// Command is an inbound client event, dispatched to the protocol engine.
type Command interface {
	Conn() ConnID
}

type JoinRoomCommand struct {
	ConnID   ConnID
	Room     Room   `validate:"required"`
	Username string `validate:"required,min=1,max=20"`
	UserID   string `validate:"required"`
}

func (c JoinRoomCommand) Conn() ConnID { return c.ConnID }

type SendMessageCommand struct {
	ConnID   ConnID
	Room     Room   `validate:"required"`
	Message  string `validate:"required"`
	Username string `validate:"required"`
	UserID   string `validate:"required"`
}

func (c SendMessageCommand) Conn() ConnID { return c.ConnID }

type TypingCommand struct {
	ConnID   ConnID
	Room     Room   `validate:"required"`
	Username string `validate:"required"`
	Typing   bool
}

func (c TypingCommand) Conn() ConnID { return c.ConnID }

type DisconnectCommand struct {
	ConnID ConnID
}

func (c DisconnectCommand) Conn() ConnID { return c.ConnID }

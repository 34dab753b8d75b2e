package domain

// Session is the state a connection holds once it has joined a room.
// It is owned by the connection registry and destroyed on disconnect.
type Session struct {
	Identity Identity
	Room     Room
}

// Package runtime owns the live presence state and the protocol engine.
// It coordinates connections, rooms, and broadcasts without containing
// any HTTP or storage logic.
package runtime

import (
	"sync"

	"community-hub/contract"
	"community-hub/domain"
)

type Set map[domain.ConnID]struct{}

// Registry maps each open connection to its sink and, once the
// connection has joined, to its identity and current room. It also keeps
// the per-room broadcast groups (which connections receive a room's
// events), the equivalent of socket room subscriptions.
//
// All room/session mutations are driven by the single engine goroutine;
// the lock only guards against the transport goroutines that register
// and look up their own connection.
type Registry struct {
	mu        sync.RWMutex
	sinks     map[domain.ConnID]contract.EventSink
	sessions  map[domain.ConnID]domain.Session
	roomConns map[domain.Room]Set
}

func NewRegistry() *Registry {
	return &Registry{
		sinks:     make(map[domain.ConnID]contract.EventSink),
		sessions:  make(map[domain.ConnID]domain.Session),
		roomConns: make(map[domain.Room]Set),
	}
}

// Register records a freshly opened connection. No identity or room is
// attached yet; the connection stays invisible to broadcasts until it joins.
func (r *Registry) Register(conn domain.ConnID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[conn] = sink
}

// SetRoom binds a connection to an identity and a room, subscribing it to
// the room's broadcast group. It returns the binding the connection
// previously held, or nil if it had never joined a room.
func (r *Registry) SetRoom(conn domain.ConnID, identity domain.Identity, room domain.Room) *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var previous *domain.Session
	if session, ok := r.sessions[conn]; ok {
		previous = &session
		r.unsubscribeLocked(conn, session.Room)
	}

	r.sessions[conn] = domain.Session{Identity: identity, Room: room}
	if _, ok := r.roomConns[room]; !ok {
		r.roomConns[room] = make(Set)
	}
	r.roomConns[room][conn] = struct{}{}
	return previous
}

// Lookup returns the connection's current binding, if it joined a room.
func (r *Registry) Lookup(conn domain.ConnID) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[conn]
	return session, ok
}

// Remove tears down a closed connection and returns its last known
// binding so the caller can clean up membership and notify the room.
func (r *Registry) Remove(conn domain.ConnID) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sinks, conn)
	session, ok := r.sessions[conn]
	if ok {
		delete(r.sessions, conn)
		r.unsubscribeLocked(conn, session.Room)
	}
	return session, ok
}

func (r *Registry) Sink(conn domain.ConnID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[conn]
	return sink, ok
}

// SinksForRoom retrieves the active sinks of a room's broadcast group,
// skipping any excluded connections (typically the sender).
// Returns nil if the room has no subscribed connections.
func (r *Registry) SinksForRoom(room domain.Room, exclude ...domain.ConnID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns, ok := r.roomConns[room]
	if !ok {
		return nil
	}
	excluded := make(Set, len(exclude))
	for _, c := range exclude {
		excluded[c] = struct{}{}
	}
	var sinks []contract.EventSink
	for conn := range conns {
		if _, skip := excluded[conn]; skip {
			continue
		}
		if sink, exists := r.sinks[conn]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// unsubscribeLocked drops a connection from a room's broadcast group.
// Empty groups are removed entirely so idle rooms cost nothing.
func (r *Registry) unsubscribeLocked(conn domain.ConnID, room domain.Room) {
	if conns, ok := r.roomConns[room]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.roomConns, room)
		}
	}
}

package runtime

import (
	"sync"

	"community-hub/domain"

	"github.com/samber/lo"
)

type userSet map[string]struct{}

// Membership tracks which distinct identities currently occupy each
// room. It is keyed by userId, not by connection: several tabs or
// devices under one identity count once. An absent room and an empty
// room are equivalent; empty sets are evicted immediately.
type Membership struct {
	mu    sync.RWMutex
	rooms map[domain.Room]userSet
}

func NewMembership() *Membership {
	return &Membership{rooms: make(map[domain.Room]userSet)}
}

// Join adds userID to the room's set and returns the resulting distinct
// member count. Joining twice is a no-op; a reconnect never double-counts.
func (m *Membership) Join(room domain.Room, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[room]; !ok {
		m.rooms[room] = make(userSet)
	}
	m.rooms[room][userID] = struct{}{}
	return len(m.rooms[room])
}

// Leave removes userID from the room's set and returns the remaining
// count. The last member leaving evicts the room entry entirely.
func (m *Membership) Leave(room domain.Room, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.rooms[room]
	if !ok {
		return 0
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(m.rooms, room)
		return 0
	}
	return len(members)
}

// Members returns a snapshot of the room's distinct userIds.
func (m *Membership) Members(room domain.Room) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Keys(m.rooms[room])
}

func (m *Membership) Count(room domain.Room) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[room])
}

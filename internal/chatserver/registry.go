package chatserver

import (
	"sync"

	"github.com/codefionn/chatwire/internal/logger"
)

// Registry maps room names to rooms. It is the sole mutation point for
// the room set and is safe under concurrent use from many workers. Rooms
// are never removed, even when their membership drops to zero; the
// registry grows monotonically for the process lifetime.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// FindOrCreate returns the room registered under name, creating and
// registering it first if necessary.
func (reg *Registry) FindOrCreate(name string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[name]; ok {
		return room
	}
	room := NewRoom(name)
	reg.rooms[name] = room
	logger.Info("Room created: %q (total rooms: %d)", name, len(reg.rooms))
	return room
}

// Find returns the room registered under name, if any
func (reg *Registry) Find(name string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[name]
	return room, ok
}

// Len returns the number of registered rooms
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

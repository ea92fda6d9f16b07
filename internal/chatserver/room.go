package chatserver

import (
	"sync"

	"github.com/codefionn/chatwire/internal/protocol"
)

// Room is a named broadcast domain. Membership and broadcasts are guarded
// by the room's own lock; the lock is never held across socket I/O, only
// across queue appends.
type Room struct {
	name string

	mu      sync.Mutex
	members map[*User]struct{}
}

// NewRoom creates an empty room
func NewRoom(name string) *Room {
	return &Room{
		name:    name,
		members: make(map[*User]struct{}),
	}
}

// Name returns the room name
func (r *Room) Name() string {
	return r.name
}

// AddMember subscribes user to the room. Adding a member twice is a no-op.
func (r *Room) AddMember(user *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[user] = struct{}{}
}

// RemoveMember unsubscribes user. Removing an absent member is a no-op.
func (r *Room) RemoveMember(user *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, user)
}

// MemberCount returns the current number of members
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Broadcast enqueues an independently owned delivery message into every
// current member's queue. The membership snapshot is consistent: members
// added after the lock is taken do not see this broadcast, members removed
// before it is released are not skipped. Broadcasts on one room are
// totally ordered by its lock.
func (r *Room) Broadcast(senderUsername, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for user := range r.members {
		// Message is a value type, so each queue receives its own copy
		user.Queue.Enqueue(protocol.NewDelivery(r.name, senderUsername, text))
	}
}

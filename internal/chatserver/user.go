package chatserver

import "time"

// User is one authenticated participant. Every user carries a delivery
// queue, though only receivers ever drain it. A user is owned by its
// connection worker; rooms hold non-owning membership references.
type User struct {
	Username string
	Queue    *MessageQueue
}

// NewUser creates a user with an empty delivery queue
func NewUser(username string, queueWait time.Duration) *User {
	return &User{
		Username: username,
		Queue:    NewMessageQueue(queueWait),
	}
}

package chatserver

import (
	"sync"
	"time"

	"github.com/codefionn/chatwire/internal/consts"
	"github.com/codefionn/chatwire/internal/protocol"
)

// MessageQueue is the FIFO of pending deliveries for one user. Producers
// never block regardless of depth; the consumer waits a bounded time and
// then receives the no-message sentinel, so it can periodically notice
// connection teardown instead of blocking forever.
type MessageQueue struct {
	mu    sync.Mutex
	items []protocol.Message
	wake  chan struct{}
	wait  time.Duration
}

// NewMessageQueue creates a queue whose Dequeue waits up to wait
func NewMessageQueue(wait time.Duration) *MessageQueue {
	if wait <= 0 {
		wait = consts.DefaultQueueWait
	}
	return &MessageQueue{
		wake: make(chan struct{}, 1),
		wait: wait,
	}
}

// Enqueue appends msg to the tail. It always succeeds and never blocks;
// unbounded growth is accepted so a slow consumer cannot stall broadcasts.
func (q *MessageQueue) Enqueue(msg protocol.Message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the head message. When nothing arrives
// within the queue's wait it returns ok == false. Order is FIFO.
func (q *MessageQueue) Dequeue() (protocol.Message, bool) {
	deadline := time.NewTimer(q.wait)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return msg, true
		}
		q.mu.Unlock()

		// The wake token may already have been consumed for an earlier
		// message, so re-check the queue after every wakeup.
		select {
		case <-q.wake:
		case <-deadline.C:
			return protocol.Message{}, false
		}
	}
}

// Len returns the number of pending messages
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

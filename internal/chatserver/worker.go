package chatserver

import (
	"errors"
	"strings"

	"github.com/codefionn/chatwire/internal/logger"
	"github.com/codefionn/chatwire/internal/protocol"
)

// worker drives the per-connection protocol state machine. It owns its
// connection and user exclusively; it touches shared state only through
// the lock-protected registry, room and queue interfaces.
type worker struct {
	id   string
	conn *protocol.Conn
	srv  *Server
	log  *logger.Logger
}

// run handles the login exchange and dispatches to the role loop.
// Malformed input during login is fatal to the connection.
func (w *worker) run() {
	defer func() {
		w.conn.Close()
		w.srv.untrackConn(w.id)
		w.log.Info("Worker finished (total: %d)", w.srv.connCountNow())
	}()

	login, err := w.conn.Receive()
	if err != nil {
		if errors.Is(err, protocol.ErrInvalidMessage) {
			w.reply(protocol.TagError, "invalid login message")
		}
		w.log.Debug("Login receive failed: %v", err)
		return
	}

	if login.Tag != protocol.TagSenderLogin && login.Tag != protocol.TagReceiverLogin {
		w.reply(protocol.TagError, "log in with slogin or rlogin before anything else")
		return
	}

	username := strings.TrimSpace(login.Payload)
	if username == "" {
		w.reply(protocol.TagError, "username must not be empty")
		return
	}

	user := NewUser(username, w.srv.cfg.QueueWait())
	if err := w.reply(protocol.TagOK, "logged in as "+username); err != nil {
		return
	}

	if login.Tag == protocol.TagSenderLogin {
		w.log.Info("Sender %q logged in", username)
		w.chatWithSender(user)
	} else {
		w.log.Info("Receiver %q logged in", username)
		w.chatWithReceiver(user)
	}
}

// chatWithSender runs the sender loop. Malformed frames keep the loop
// alive with an error reply; transport failures end the worker. Leaving a
// joined room on every exit path is handled by the deferred remove.
func (w *worker) chatWithSender(user *User) {
	var room *Room
	defer func() {
		if room != nil {
			room.RemoveMember(user)
		}
	}()

	for {
		msg, err := w.conn.Receive()
		if err != nil {
			if errors.Is(err, protocol.ErrInvalidMessage) {
				w.reply(protocol.TagError, "invalid message, please try again")
				continue
			}
			w.log.Debug("Sender receive failed: %v", err)
			return
		}

		switch msg.Tag {
		case protocol.TagJoin:
			name := strings.TrimSpace(msg.Payload)
			if name == "" {
				w.reply(protocol.TagError, "room name must not be empty")
				continue
			}
			if room != nil {
				room.RemoveMember(user)
			}
			room = w.srv.registry.FindOrCreate(name)
			room.AddMember(user)
			w.reply(protocol.TagOK, "joined "+name)

		case protocol.TagLeave:
			if room == nil {
				w.reply(protocol.TagError, "cannot leave a room you have not joined")
				continue
			}
			room.RemoveMember(user)
			room = nil
			w.reply(protocol.TagOK, "left the room")

		case protocol.TagSendAll:
			if room == nil {
				w.reply(protocol.TagError, "cannot send to a room you have not joined")
				continue
			}
			room.Broadcast(user.Username, msg.Payload)
			w.reply(protocol.TagOK, "message sent")

		case protocol.TagQuit:
			w.reply(protocol.TagOK, "bye")
			return

		default:
			w.reply(protocol.TagError, "unexpected tag "+string(msg.Tag))
		}
	}
}

// chatWithReceiver expects a join as the first message, then stops reading
// entirely: it drains the user's delivery queue and forwards every message
// over the connection. A failed forward is the only way a dead receiver is
// detected, and it removes the membership so later broadcasts skip it.
func (w *worker) chatWithReceiver(user *User) {
	msg, err := w.conn.Receive()
	if err != nil {
		if errors.Is(err, protocol.ErrInvalidMessage) {
			w.reply(protocol.TagError, "invalid message, please try again")
		}
		w.log.Debug("Receiver join receive failed: %v", err)
		return
	}
	if msg.Tag != protocol.TagJoin {
		w.reply(protocol.TagError, "must join a room before receiving messages")
		return
	}
	name := strings.TrimSpace(msg.Payload)
	if name == "" {
		w.reply(protocol.TagError, "room name must not be empty")
		return
	}

	room := w.srv.registry.FindOrCreate(name)
	room.AddMember(user)
	defer room.RemoveMember(user)

	if err := w.reply(protocol.TagOK, "joined "+name); err != nil {
		return
	}

	for {
		delivery, ok := user.Queue.Dequeue()
		if !ok {
			// Queue wait expired with no traffic; use the wakeup to
			// check for server shutdown.
			select {
			case <-w.srv.stopChan:
				return
			default:
			}
			continue
		}
		if err := w.conn.Send(delivery); err != nil {
			w.log.Info("Receiver %q unreachable, dropping membership: %v", user.Username, err)
			return
		}
	}
}

// reply sends a response frame, ignoring transport failures beyond
// recording the result; callers that must stop on a failed reply check
// the returned error.
func (w *worker) reply(tag protocol.Tag, payload string) error {
	err := w.conn.Send(protocol.New(tag, payload))
	if err != nil && !errors.Is(err, protocol.ErrInvalidMessage) {
		w.log.Debug("Reply failed: %v", err)
	}
	return err
}

// Package protocol implements the chatwire wire protocol: one message per
// newline-terminated ASCII line, encoded as "tag:payload".
//
// Delivery payloads are themselves colon-delimited as "room:sender:text";
// only the text part may contain further colons.
package protocol

import "strings"

// Tag is the message-type discriminator of the wire protocol
type Tag string

// Wire protocol tags. The literals are fixed protocol tokens.
const (
	// TagSenderLogin authenticates the connection in the sender role
	TagSenderLogin Tag = "slogin"
	// TagReceiverLogin authenticates the connection in the receiver role
	TagReceiverLogin Tag = "rlogin"
	// TagJoin subscribes to a room, payload is the room name
	TagJoin Tag = "join"
	// TagLeave unsubscribes from the current room
	TagLeave Tag = "leave"
	// TagSendAll broadcasts the payload text to the current room
	TagSendAll Tag = "sendall"
	// TagQuit ends a sender session
	TagQuit Tag = "quit"
	// TagOK is a positive server response
	TagOK Tag = "ok"
	// TagError is a negative server response, payload is human-readable
	TagError Tag = "err"
	// TagDelivery carries one broadcast to one receiver
	TagDelivery Tag = "delivery"
)

// Message is one immutable protocol unit
type Message struct {
	Tag     Tag
	Payload string
}

// New constructs a message
func New(tag Tag, payload string) Message {
	return Message{Tag: tag, Payload: payload}
}

// NewDelivery constructs a delivery message with the structured
// room:sender:text payload
func NewDelivery(room, sender, text string) Message {
	return Message{
		Tag:     TagDelivery,
		Payload: room + ":" + sender + ":" + text,
	}
}

// Encode renders the complete wire frame including the terminator
func (m Message) Encode() []byte {
	frame := make([]byte, 0, len(m.Tag)+len(m.Payload)+2)
	frame = append(frame, m.Tag...)
	frame = append(frame, ':')
	frame = append(frame, m.Payload...)
	frame = append(frame, '\n')
	return frame
}

// SplitDelivery splits a delivery payload into room, sender and text.
// ok is false if the payload does not contain two separators.
func SplitDelivery(payload string) (room, sender, text string, ok bool) {
	room, rest, found := strings.Cut(payload, ":")
	if !found {
		return "", "", "", false
	}
	sender, text, found = strings.Cut(rest, ":")
	if !found {
		return "", "", "", false
	}
	return room, sender, text, true
}

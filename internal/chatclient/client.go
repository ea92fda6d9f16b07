// Package chatclient implements the client side of the chatwire protocol:
// dialing, the login exchange and the sender/receiver terminal loops.
package chatclient

import (
	"fmt"

	"github.com/codefionn/chatwire/internal/protocol"
)

// Client wraps one framed connection to a chat server
type Client struct {
	conn *protocol.Conn
}

// Dial connects to the chat server. frameLimit <= 0 uses the default.
func Dial(host string, port int, frameLimit int) (*Client, error) {
	conn, err := protocol.Dial(host, port, frameLimit)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an already framed connection; used by tests
func NewClient(conn *protocol.Conn) *Client {
	return &Client{conn: conn}
}

// Close closes the connection. It is idempotent.
func (c *Client) Close() error {
	return c.conn.Close()
}

// LoginSender performs the sender login exchange
func (c *Client) LoginSender(username string) error {
	return c.login(protocol.TagSenderLogin, username)
}

// LoginReceiver performs the receiver login exchange
func (c *Client) LoginReceiver(username string) error {
	return c.login(protocol.TagReceiverLogin, username)
}

func (c *Client) login(tag protocol.Tag, username string) error {
	if err := c.conn.Send(protocol.New(tag, username)); err != nil {
		return fmt.Errorf("failed to send login: %w", err)
	}
	resp, err := c.conn.Receive()
	if err != nil {
		return fmt.Errorf("failed to receive login response: %w", err)
	}
	if resp.Tag == protocol.TagError {
		return fmt.Errorf("login rejected: %s", resp.Payload)
	}
	return nil
}

// JoinRoom sends a join and waits for the server's verdict
func (c *Client) JoinRoom(room string) error {
	if err := c.conn.Send(protocol.New(protocol.TagJoin, room)); err != nil {
		return fmt.Errorf("failed to send join: %w", err)
	}
	resp, err := c.conn.Receive()
	if err != nil {
		return fmt.Errorf("failed to receive join response: %w", err)
	}
	if resp.Tag == protocol.TagError {
		return fmt.Errorf("join rejected: %s", resp.Payload)
	}
	return nil
}

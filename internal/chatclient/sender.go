package chatclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/codefionn/chatwire/internal/protocol"
)

// ErrUnknownCommand reports a slash line that is not a known command
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand maps one line of user input to a protocol message. Lines
// starting with '/' are commands (/join <room>, /leave, /quit); any other
// line is broadcast text.
func ParseCommand(line string) (protocol.Message, error) {
	if !strings.HasPrefix(line, "/") {
		return protocol.New(protocol.TagSendAll, line), nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/join":
		if arg == "" {
			return protocol.Message{}, fmt.Errorf("usage: /join <room>")
		}
		return protocol.New(protocol.TagJoin, arg), nil
	case "/leave":
		return protocol.New(protocol.TagLeave, "bye"), nil
	case "/quit":
		return protocol.New(protocol.TagQuit, "bye"), nil
	default:
		return protocol.Message{}, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

// RunSender reads lines from in until /quit or end of input, translating
// each into a protocol exchange. Server error payloads and local command
// mistakes go to errOut and the loop continues; transport failures end the
// loop with an error. When prompt is non-nil a prompt string is written to
// it before every read.
func (c *Client) RunSender(in io.Reader, prompt io.Writer, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		if prompt != nil {
			fmt.Fprint(prompt, "> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			// end of input behaves like /quit
			return c.quit()
		}

		msg, err := ParseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintln(errOut, err)
			continue
		}
		if msg.Tag == protocol.TagQuit {
			return c.quit()
		}

		if err := c.exchange(msg, errOut); err != nil {
			return err
		}
	}
}

// exchange performs one send/response round trip. A locally invalid
// message (too long, embedded newline) is reported and skipped.
func (c *Client) exchange(msg protocol.Message, errOut io.Writer) error {
	if err := c.conn.Send(msg); err != nil {
		if errors.Is(err, protocol.ErrInvalidMessage) {
			fmt.Fprintln(errOut, err)
			return nil
		}
		return err
	}
	resp, err := c.conn.Receive()
	if err != nil {
		if errors.Is(err, protocol.ErrInvalidMessage) {
			fmt.Fprintln(errOut, err)
			return nil
		}
		return err
	}
	if resp.Tag == protocol.TagError {
		fmt.Fprintln(errOut, resp.Payload)
	}
	return nil
}

// quit performs the quit exchange and closes the connection. Failures are
// ignored, the session is over either way.
func (c *Client) quit() error {
	c.conn.Send(protocol.New(protocol.TagQuit, "bye"))
	c.conn.Receive()
	return c.conn.Close()
}

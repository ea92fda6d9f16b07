package chatclient

import (
	"errors"
	"fmt"
	"io"

	"github.com/codefionn/chatwire/internal/protocol"
)

// FormatDelivery renders a delivery payload for the terminal as
// "sender: text". The room part is dropped, the receiver joined it itself.
func FormatDelivery(payload string) (string, error) {
	_, sender, text, ok := protocol.SplitDelivery(payload)
	if !ok {
		return "", fmt.Errorf("malformed delivery payload %q", payload)
	}
	return sender + ": " + text, nil
}

// RunReceiver consumes frames forever, printing deliveries to out and
// error payloads to errOut. It returns only on transport failure.
func (c *Client) RunReceiver(out, errOut io.Writer) error {
	for {
		msg, err := c.conn.Receive()
		if err != nil {
			if errors.Is(err, protocol.ErrInvalidMessage) {
				fmt.Fprintln(errOut, err)
				continue
			}
			return err
		}

		switch msg.Tag {
		case protocol.TagDelivery:
			line, err := FormatDelivery(msg.Payload)
			if err != nil {
				fmt.Fprintln(errOut, err)
				continue
			}
			fmt.Fprintln(out, line)
		case protocol.TagError:
			fmt.Fprintln(errOut, msg.Payload)
		default:
			// other tags are unexpected here, ignore them
		}
	}
}

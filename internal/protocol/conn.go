package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/codefionn/chatwire/internal/consts"
)

// Result classifies the outcome of the most recent Send or Receive
type Result int

const (
	// ResultSuccess means the last operation completed normally
	ResultSuccess Result = iota
	// ResultInvalidMessage means the last operation failed local frame
	// validation; the connection is still usable
	ResultInvalidMessage
	// ResultEOFOrError means the peer closed or transport I/O failed;
	// the connection is unusable
	ResultEOFOrError
)

var (
	// ErrInvalidMessage reports a frame that failed validation before or
	// after transport
	ErrInvalidMessage = errors.New("invalid message")
	// ErrClosed reports an operation on a closed connection
	ErrClosed = errors.New("connection closed")
)

// Conn frames messages over one socket. A Conn has exactly one owner; only
// Close is safe to call from another goroutine.
type Conn struct {
	conn       net.Conn
	reader     *bufio.Reader
	frameLimit int

	mu         sync.Mutex
	closed     bool
	lastResult Result
}

// NewConn wraps an accepted or dialed socket. frameLimit bounds the full
// encoded frame; values below 1 fall back to the default.
func NewConn(conn net.Conn, frameLimit int) *Conn {
	if frameLimit < 1 {
		frameLimit = consts.DefaultFrameLimit
	}
	return &Conn{
		conn:       conn,
		reader:     bufio.NewReaderSize(conn, consts.BufferSize4KB),
		frameLimit: frameLimit,
	}
}

// Dial connects to a chat server and returns the framed connection
func Dial(host string, port int, frameLimit int) (*Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return NewConn(conn, frameLimit), nil
}

// LastResult returns the classification of the most recent Send or Receive
func (c *Conn) LastResult() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

func (c *Conn) setResult(r Result) {
	c.mu.Lock()
	c.lastResult = r
	c.mu.Unlock()
}

// IsOpen reports whether Close has been called
func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close closes the underlying socket. It is idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}

// Send validates and transmits one frame. Validation failures are reported
// before any byte is written, so ErrInvalidMessage never leaves a partial
// frame on the wire.
func (c *Conn) Send(msg Message) error {
	if !c.IsOpen() {
		c.setResult(ResultEOFOrError)
		return ErrClosed
	}
	if strings.ContainsAny(msg.Payload, "\n\r") {
		c.setResult(ResultInvalidMessage)
		return fmt.Errorf("%w: payload contains a line terminator", ErrInvalidMessage)
	}
	frame := msg.Encode()
	if len(frame) > c.frameLimit {
		c.setResult(ResultInvalidMessage)
		return fmt.Errorf("%w: frame length %d exceeds limit %d", ErrInvalidMessage, len(frame), c.frameLimit)
	}
	if _, err := c.conn.Write(frame); err != nil {
		c.setResult(ResultEOFOrError)
		return fmt.Errorf("failed to send frame: %w", err)
	}
	c.setResult(ResultSuccess)
	return nil
}

// Receive blocks until one newline-terminated frame arrives and decodes it.
// A frame without the tag separator, or longer than the frame limit, yields
// ErrInvalidMessage with the line consumed, so the caller may keep reading.
func (c *Conn) Receive() (Message, error) {
	if !c.IsOpen() {
		c.setResult(ResultEOFOrError)
		return Message{}, ErrClosed
	}
	line, err := c.readLine()
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			c.setResult(ResultInvalidMessage)
			return Message{}, err
		}
		c.setResult(ResultEOFOrError)
		return Message{}, fmt.Errorf("failed to receive frame: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	tag, payload, found := strings.Cut(line, ":")
	if !found {
		c.setResult(ResultInvalidMessage)
		return Message{}, fmt.Errorf("%w: missing tag separator", ErrInvalidMessage)
	}
	c.setResult(ResultSuccess)
	return Message{Tag: Tag(tag), Payload: payload}, nil
}

// readLine reads one newline-terminated frame while holding no more than the
// frame limit in memory. When a line runs past the limit the remainder is
// drained in reader-sized chunks and ErrInvalidMessage is returned with the
// line fully consumed.
func (c *Conn) readLine() (string, error) {
	var buf []byte
	for {
		chunk, err := c.reader.ReadSlice('\n')
		buf = append(buf, chunk...)
		if err == nil {
			if len(buf) > c.frameLimit {
				return "", fmt.Errorf("%w: frame length %d exceeds limit %d", ErrInvalidMessage, len(buf), c.frameLimit)
			}
			return string(buf), nil
		}
		if err != bufio.ErrBufferFull {
			return "", err
		}
		if len(buf) > c.frameLimit {
			return "", c.discardLine(len(buf))
		}
	}
}

// discardLine consumes the rest of an over-limit line without retaining it,
// counting the total length for the error message.
func (c *Conn) discardLine(read int) error {
	total := read
	for {
		chunk, err := c.reader.ReadSlice('\n')
		total += len(chunk)
		if err == nil {
			return fmt.Errorf("%w: frame length %d exceeds limit %d", ErrInvalidMessage, total, c.frameLimit)
		}
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

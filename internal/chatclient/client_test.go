package chatclient

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/codefionn/chatwire/internal/protocol"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		tag     protocol.Tag
		payload string
		wantErr bool
	}{
		{"hello there", protocol.TagSendAll, "hello there", false},
		{"/join lobby", protocol.TagJoin, "lobby", false},
		{"/join   spaced  ", protocol.TagJoin, "spaced", false},
		{"/leave", protocol.TagLeave, "bye", false},
		{"/quit", protocol.TagQuit, "bye", false},
		{"/join", protocol.Tag(""), "", true},
		{"/dance", protocol.Tag(""), "", true},
		{"", protocol.TagSendAll, "", false},
	}

	for _, tt := range tests {
		msg, err := ParseCommand(tt.line)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCommand(%q): expected error", tt.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCommand(%q): unexpected error %v", tt.line, err)
			continue
		}
		if msg.Tag != tt.tag || msg.Payload != tt.payload {
			t.Errorf("ParseCommand(%q) = (%q, %q), want (%q, %q)",
				tt.line, msg.Tag, msg.Payload, tt.tag, tt.payload)
		}
	}
}

func TestParseCommandUnknownError(t *testing.T) {
	_, err := ParseCommand("/frobnicate now")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestFormatDelivery(t *testing.T) {
	line, err := FormatDelivery("lobby:alice:hi there")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if line != "alice: hi there" {
		t.Errorf("Unexpected rendering %q", line)
	}

	if _, err := FormatDelivery("not-structured"); err == nil {
		t.Error("Expected error for malformed payload")
	}
}

// scriptedServer answers each received tag with a canned reply over the
// server end of a pipe
func scriptedServer(t *testing.T, conn *protocol.Conn, replies map[protocol.Tag]protocol.Message) {
	t.Helper()
	go func() {
		for {
			msg, err := conn.Receive()
			if err != nil {
				return
			}
			reply, ok := replies[msg.Tag]
			if !ok {
				reply = protocol.New(protocol.TagError, "unexpected tag "+string(msg.Tag))
			}
			if err := conn.Send(reply); err != nil {
				return
			}
		}
	}()
}

func TestRunSenderQuitAndErrors(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	client := NewClient(protocol.NewConn(clientSide, 0))
	server := protocol.NewConn(serverSide, 0)
	defer server.Close()

	scriptedServer(t, server, map[protocol.Tag]protocol.Message{
		protocol.TagSendAll: protocol.New(protocol.TagOK, "message sent"),
		protocol.TagLeave:   protocol.New(protocol.TagError, "cannot leave a room you have not joined"),
		protocol.TagQuit:    protocol.New(protocol.TagOK, "bye"),
	})

	input := strings.NewReader("hello\n/leave\n/bogus\n/quit\n")
	var errOut bytes.Buffer

	if err := client.RunSender(input, nil, &errOut); err != nil {
		t.Fatalf("RunSender failed: %v", err)
	}

	stderr := errOut.String()
	if !strings.Contains(stderr, "cannot leave") {
		t.Errorf("Expected server error payload in stderr, got %q", stderr)
	}
	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("Expected local command error in stderr, got %q", stderr)
	}
}

func TestRunSenderQuitsOnEndOfInput(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	client := NewClient(protocol.NewConn(clientSide, 0))
	server := protocol.NewConn(serverSide, 0)
	defer server.Close()

	scriptedServer(t, server, map[protocol.Tag]protocol.Message{
		protocol.TagQuit: protocol.New(protocol.TagOK, "bye"),
	})

	var errOut bytes.Buffer
	if err := client.RunSender(strings.NewReader(""), nil, &errOut); err != nil {
		t.Fatalf("RunSender on empty input failed: %v", err)
	}
}

func TestRunReceiverRendersDeliveries(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	client := NewClient(protocol.NewConn(clientSide, 0))
	server := protocol.NewConn(serverSide, 0)

	go func() {
		server.Send(protocol.NewDelivery("lobby", "alice", "hi"))
		server.Send(protocol.New(protocol.TagError, "transient problem"))
		server.Send(protocol.NewDelivery("lobby", "bob", "hey: you"))
		server.Close()
	}()

	var out, errOut bytes.Buffer
	err := client.RunReceiver(&out, &errOut)
	if err == nil {
		t.Fatal("Expected transport error once the server closed")
	}

	wantOut := "alice: hi\nbob: hey: you\n"
	if out.String() != wantOut {
		t.Errorf("Expected output %q, got %q", wantOut, out.String())
	}
	if !strings.Contains(errOut.String(), "transient problem") {
		t.Errorf("Expected error payload in stderr, got %q", errOut.String())
	}
}

func TestLoginRejected(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	client := NewClient(protocol.NewConn(clientSide, 0))
	server := protocol.NewConn(serverSide, 0)
	defer server.Close()

	go func() {
		server.Receive()
		server.Send(protocol.New(protocol.TagError, "no room at the inn"))
	}()

	err := client.LoginSender("alice")
	if err == nil || !strings.Contains(err.Error(), "no room at the inn") {
		t.Errorf("Expected rejection error with payload, got %v", err)
	}
}

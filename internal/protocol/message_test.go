package protocol

import "testing"

func TestEncode(t *testing.T) {
	msg := New(TagSendAll, "hello world")
	got := string(msg.Encode())
	want := "sendall:hello world\n"
	if got != want {
		t.Errorf("Expected frame %q, got %q", want, got)
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	got := string(New(TagLeave, "").Encode())
	if got != "leave:\n" {
		t.Errorf("Expected frame %q, got %q", "leave:\n", got)
	}
}

func TestNewDelivery(t *testing.T) {
	msg := NewDelivery("lobby", "alice", "hi there")
	if msg.Tag != TagDelivery {
		t.Errorf("Expected delivery tag, got %q", msg.Tag)
	}
	if msg.Payload != "lobby:alice:hi there" {
		t.Errorf("Unexpected delivery payload %q", msg.Payload)
	}
}

func TestSplitDelivery(t *testing.T) {
	tests := []struct {
		payload string
		room    string
		sender  string
		text    string
		ok      bool
	}{
		{"lobby:alice:hi", "lobby", "alice", "hi", true},
		{"lobby:alice:note: remember the colons", "lobby", "alice", "note: remember the colons", true},
		{"lobby:alice:", "lobby", "alice", "", true},
		{"lobby:alice", "", "", "", false},
		{"nocolons", "", "", "", false},
		{"", "", "", "", false},
	}

	for _, tt := range tests {
		room, sender, text, ok := SplitDelivery(tt.payload)
		if ok != tt.ok {
			t.Errorf("SplitDelivery(%q): expected ok=%v, got %v", tt.payload, tt.ok, ok)
			continue
		}
		if room != tt.room || sender != tt.sender || text != tt.text {
			t.Errorf("SplitDelivery(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tt.payload, room, sender, text, tt.room, tt.sender, tt.text)
		}
	}
}

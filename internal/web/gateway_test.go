package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/chatwire/internal/chatserver"
	"github.com/codefionn/chatwire/internal/config"
)

func startTestGateway(t *testing.T) (*Gateway, *chatserver.Registry, *httptest.Server) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.QueueWaitSeconds = 1

	registry := chatserver.NewRegistry()
	gateway := NewGateway(cfg, registry)

	ts := httptest.NewServer(gateway.Handler())
	t.Cleanup(ts.Close)

	return gateway, registry, ts
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
}

func dialWS(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readDelivery(t *testing.T, conn *websocket.Conn) Delivery {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var d Delivery
	require.NoError(t, conn.ReadJSON(&d))
	return d
}

func TestHealthEndpoint(t *testing.T) {
	_, registry, ts := startTestGateway(t)
	registry.FindOrCreate("lobby")

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 1, body["rooms"])
}

func TestWebSocketRequiresRoomAndUser(t *testing.T) {
	_, _, ts := startTestGateway(t)

	resp, err := http.Get(ts.URL + "/ws?room=lobby")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketReceivesBroadcasts(t *testing.T) {
	_, registry, ts := startTestGateway(t)

	conn := dialWS(t, ts, "room=lobby&user=webbob")

	room, ok := registry.Find("lobby")
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return room.MemberCount() == 1
	}, 5*time.Second, 50*time.Millisecond)

	room.Broadcast("alice", "hello web")

	d := readDelivery(t, conn)
	assert.Equal(t, Delivery{Room: "lobby", Sender: "alice", Text: "hello web"}, d)
}

func TestWebSocketPublishReachesOtherParticipants(t *testing.T) {
	_, registry, ts := startTestGateway(t)

	listener := dialWS(t, ts, "room=lobby&user=listener")
	speaker := dialWS(t, ts, "room=lobby&user=speaker")

	room, ok := registry.Find("lobby")
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return room.MemberCount() == 2
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, speaker.WriteMessage(websocket.TextMessage, []byte("hi from the browser")))

	// both members receive the broadcast, the speaker included
	for _, conn := range []*websocket.Conn{listener, speaker} {
		d := readDelivery(t, conn)
		assert.Equal(t, "speaker", d.Sender)
		assert.Equal(t, "hi from the browser", d.Text)
	}
}

func TestClosedWebSocketIsRemovedFromRoom(t *testing.T) {
	_, registry, ts := startTestGateway(t)

	conn := dialWS(t, ts, "room=lobby&user=shortlived")

	room, ok := registry.Find("lobby")
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return room.MemberCount() == 1
	}, 5*time.Second, 50*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return room.MemberCount() == 0
	}, 5*time.Second, 50*time.Millisecond, "closed participant should lose membership")
}

// Package web exposes the chat room registry to websocket clients. A
// gateway participant is an ordinary room member: it receives every
// broadcast as a JSON delivery and may publish text frames of its own.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codefionn/chatwire/internal/chatserver"
	"github.com/codefionn/chatwire/internal/config"
	"github.com/codefionn/chatwire/internal/consts"
	"github.com/codefionn/chatwire/internal/logger"
	"github.com/codefionn/chatwire/internal/protocol"
)

// Delivery is the JSON rendering of one broadcast
type Delivery struct {
	Room   string `json:"room"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Gateway bridges websocket clients into the server's room registry
type Gateway struct {
	addr       string
	registry   *chatserver.Registry
	queueWait  time.Duration
	httpServer *http.Server
	upgrader   websocket.Upgrader
	startTime  time.Time
	stopChan   chan struct{}
	log        *logger.Logger
}

// NewGateway creates a gateway serving cfg.HTTPAddr on top of the given
// room registry
func NewGateway(cfg *config.Config, registry *chatserver.Registry) *Gateway {
	g := &Gateway{
		addr:      cfg.HTTPAddr,
		registry:  registry,
		queueWait: cfg.QueueWait(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  consts.BufferSize1KB,
			WriteBufferSize: consts.BufferSize1KB,
		},
		startTime: time.Now(),
		stopChan:  make(chan struct{}),
		log:       logger.Global().WithPrefix("gateway"),
	}
	g.httpServer = &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: g.Handler(),
	}
	return g
}

// Handler returns the gateway's routes; split out for tests
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", g.handleHealth)
	mux.HandleFunc("/ws", g.handleWebSocket)
	return mux
}

// Start serves HTTP in the background
func (g *Gateway) Start() {
	go func() {
		g.log.Info("Listening on %s", g.addr)
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.log.Error("Serve failed: %v", err)
		}
	}()
}

// Stop shuts the HTTP server down and releases all gateway participants
func (g *Gateway) Stop(ctx context.Context) error {
	close(g.stopChan)
	return g.httpServer.Shutdown(ctx)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rooms":          g.registry.Len(),
		"uptime_seconds": int(time.Since(g.startTime) / time.Second),
	})
}

// handleWebSocket upgrades the connection and registers the participant in
// the requested room. The connection runs a read loop here and a delivery
// pump goroutine; either side failing tears both down and drops the
// membership, exactly like a failed receiver forward on the TCP side.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomName := r.URL.Query().Get("room")
	username := r.URL.Query().Get("user")
	if roomName == "" || username == "" {
		http.Error(w, "room and user query parameters are required", http.StatusBadRequest)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("Upgrade failed: %v", err)
		return
	}

	user := chatserver.NewUser(username, g.queueWait)
	room := g.registry.FindOrCreate(roomName)
	room.AddMember(user)
	g.log.Info("Participant %q joined room %q", username, roomName)

	stop := make(chan struct{})
	done := make(chan struct{})
	go g.deliveryPump(conn, room, user, stop, done)

	// read loop: every text frame is a broadcast from this participant
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		room.Broadcast(username, string(data))
	}

	room.RemoveMember(user)
	close(stop)
	conn.Close()
	<-done
	g.log.Info("Participant %q left room %q", username, roomName)
}

// deliveryPump forwards the participant's queue to the websocket as JSON.
// It exits on gateway shutdown, on the read loop ending, or on a failed
// write, which is the only disconnect detection once traffic is flowing.
func (g *Gateway) deliveryPump(conn *websocket.Conn, room *chatserver.Room, user *chatserver.User, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		msg, ok := user.Queue.Dequeue()
		if !ok {
			select {
			case <-g.stopChan:
				room.RemoveMember(user)
				conn.Close()
				return
			case <-stop:
				return
			default:
			}
			continue
		}

		roomName, sender, text, valid := protocol.SplitDelivery(msg.Payload)
		if !valid {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(consts.Timeout10Seconds))
		if err := conn.WriteJSON(Delivery{Room: roomName, Sender: sender, Text: text}); err != nil {
			room.RemoveMember(user)
			conn.Close()
			return
		}
	}
}

// String describes the gateway for log lines
func (g *Gateway) String() string {
	return fmt.Sprintf("gateway(%s)", g.addr)
}

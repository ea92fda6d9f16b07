package chatserver

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/codefionn/chatwire/internal/config"
	"github.com/codefionn/chatwire/internal/consts"
	"github.com/codefionn/chatwire/internal/logger"
	"github.com/codefionn/chatwire/internal/protocol"
)

// Server owns the room registry, accepts TCP connections and runs one
// worker goroutine per connection. Workers are never joined; their exit
// must not affect any other connection, room or queue.
type Server struct {
	cfg      *config.Config
	port     int
	listener net.Listener
	registry *Registry

	// Connection tracking
	connMu    sync.Mutex
	conns     map[string]*protocol.Conn
	connCount int

	// Control
	stopChan chan struct{}
	stopOnce sync.Once

	// Connection ID counter
	connIDCounter int
	connIDMu      sync.Mutex
}

// NewServer creates a chat server for the given port
func NewServer(cfg *config.Config, port int) *Server {
	return &Server{
		cfg:      cfg,
		port:     port,
		registry: NewRegistry(),
		conns:    make(map[string]*protocol.Conn),
		stopChan: make(chan struct{}),
	}
}

// Registry returns the server's room registry. The websocket gateway
// shares it so gateway participants join the same rooms.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Listen binds the server socket
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.cfg.ListenHost, strconv.Itoa(s.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	logger.Info("Chat server listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound listener address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until Stop is called or the listener fails.
// Each accepted connection gets a detached worker goroutine.
func (s *Server) Serve() error {
	if s.listener == nil {
		return fmt.Errorf("server is not listening, call Listen first")
	}

	for {
		select {
		case <-s.stopChan:
			return nil
		default:
		}

		// Accept with a deadline so the loop can notice Stop
		if tcp, ok := s.listener.(*net.TCPListener); ok {
			tcp.SetDeadline(time.Now().Add(consts.AcceptPollInterval))
		}

		conn, err := s.listener.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-s.stopChan:
				return nil
			default:
			}
			logger.Error("Error accepting connection: %v", err)
			continue
		}

		connID := s.generateConnectionID()
		framed := protocol.NewConn(conn, s.cfg.FrameLimitBytes)

		if !s.trackConn(connID, framed) {
			logger.Warn("Connection limit reached, rejecting %s", conn.RemoteAddr())
			framed.Send(protocol.New(protocol.TagError, "server is full, try again later"))
			framed.Close()
			continue
		}

		logger.Info("Connection accepted: %s from %s (total: %d)", connID, conn.RemoteAddr(), s.connCountNow())

		w := &worker{id: connID, conn: framed, srv: s, log: logger.Global().WithPrefix(connID)}
		go w.run()
	}
}

// Stop closes the listener and every tracked connection. Workers blocked
// in a socket read fail over to their transport-error exit path.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		logger.Info("Stopping chat server...")
		close(s.stopChan)

		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Error("Error closing listener: %v", err)
			}
		}

		s.connMu.Lock()
		conns := make([]*protocol.Conn, 0, len(s.conns))
		for _, c := range s.conns {
			conns = append(conns, c)
		}
		s.connMu.Unlock()
		for _, c := range conns {
			c.Close()
		}

		logger.Info("Chat server stopped")
	})
}

// trackConn registers a connection, enforcing the configured limit.
// It reports false when the connection must be rejected.
func (s *Server) trackConn(connID string, conn *protocol.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.cfg.MaxConns > 0 && s.connCount >= s.cfg.MaxConns {
		return false
	}
	s.conns[connID] = conn
	s.connCount++
	return true
}

// untrackConn removes a connection from tracking
func (s *Server) untrackConn(connID string) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if _, ok := s.conns[connID]; ok {
		delete(s.conns, connID)
		s.connCount--
	}
}

func (s *Server) connCountNow() int {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.connCount
}

// generateConnectionID generates a unique connection ID for log lines
func (s *Server) generateConnectionID() string {
	s.connIDMu.Lock()
	defer s.connIDMu.Unlock()

	s.connIDCounter++
	return fmt.Sprintf("conn_%d", s.connIDCounter)
}

// Package server exposes the round engine over WebSocket: one table
// session per connection, engine events forwarded as messages.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc

	rules       game.Rules
	bankroll    int
	minBet      int
	timeout     time.Duration
	clock       quartz.Clock
	sessionSeed func() (int64, bool)
}

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithRules sets the house rules for new sessions.
func WithRules(rules game.Rules) ServerOption {
	return func(s *Server) {
		s.rules = rules
	}
}

// WithStakes sets the starting bankroll and table minimum for new
// sessions.
func WithStakes(bankroll, minBet int) ServerOption {
	return func(s *Server) {
		s.bankroll = bankroll
		s.minBet = minBet
	}
}

// WithDecisionClock sets the clock and timeout applied to player
// decisions. A zero timeout disables it.
func WithDecisionClock(clock quartz.Clock, timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.clock = clock
		s.timeout = timeout
	}
}

// WithSeedSource supplies deterministic shoe seeds for new sessions,
// used by integration tests.
func WithSeedSource(next func() (int64, bool)) ServerOption {
	return func(s *Server) {
		s.sessionSeed = next
	}
}

// NewServer creates a new WebSocket server
func NewServer(addr string, logger *log.Logger, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				// In production, implement proper origin checking
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		rules:       game.DefaultRules(),
		bankroll:    1000,
		minBet:      1,
		clock:       quartz.NewReal(),
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPlayerSession builds a table session wired to the connection's
// outbox.
func (s *Server) NewPlayerSession(c *Connection) (*Session, error) {
	opts := []SessionOption{
		WithBankroll(s.bankroll),
		WithSessionMinimumBet(s.minBet),
		WithClock(s.clock),
		WithDecisionTimeout(s.timeout),
		WithSessionLogger(s.logger),
		WithSend(func(msg *Message) { _ = c.SendMessage(msg) }),
	}
	if s.sessionSeed != nil {
		if seed, ok := s.sessionSeed(); ok {
			opts = append(opts, WithSessionSeed(seed))
		}
	}
	return NewSession(s.rules, opts...)
}

// Start starts the WebSocket server
func (s *Server) Start() error {
	go s.run()

	// Create a dedicated mux for this server instance
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()

	// Close all connections
	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", len(s.connections))

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "total", len(s.connections))

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.register <- client
	client.Start()

	// Connection cleanup is handled by the connection itself
	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// GetConnectedPlayers returns a list of connected player IDs
func (s *Server) GetConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if playerID := conn.GetPlayer(); playerID != "" {
			players = append(players, playerID)
		}
	}

	return players
}

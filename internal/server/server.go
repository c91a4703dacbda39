// Package server exposes blackjack sessions over websockets. Each user plays
// on one engine at a time, driven by their latest connection; accounts are
// loaded from and saved through the persistence gateway.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/persistence"
	"github.com/lox/blackjack/internal/storage"
)

// flushTimeout bounds a save flush when a session starts or ends.
const flushTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	upgrader       websocket.Upgrader
	connections    map[*Connection]bool
	sessions       map[string]*session
	register       chan *Connection
	unregister     chan *Connection
	logger         *log.Logger
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	gateway        *persistence.Gateway
	rules          game.Rules
	training       bool
	allowedOrigins []string
	newShoe        func() *deck.Shoe
	httpServer     *http.Server
	runOnce        sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithRules sets the table rules for every session.
func WithRules(rules game.Rules) Option {
	return func(s *Server) { s.rules = rules }
}

// WithTraining enables basic-strategy feedback for new sessions.
func WithTraining(enabled bool) Option {
	return func(s *Server) { s.training = enabled }
}

// WithAllowedOrigins restricts websocket upgrades to the given origins.
// An empty list allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithShoeFactory overrides the shoe each new session deals from.
func WithShoeFactory(newShoe func() *deck.Shoe) Option {
	return func(s *Server) { s.newShoe = newShoe }
}

// NewServer creates a new WebSocket server
func NewServer(logger *log.Logger, gateway *persistence.Gateway, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		connections: make(map[*Connection]bool),
		sessions:    make(map[string]*session),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		gateway:     gateway,
		rules:       game.DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// Handler returns the HTTP routes served by the server.
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/users/{userID}/snapshot", s.handleSnapshot)
	})
	return r
}

// Start listens on addr and serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting WebSocket server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes every connection and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ConnectionCount returns the number of registered connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "user", conn.UserID(), "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			delete(s.connections, conn)
			total := len(s.connections)
			s.mu.Unlock()
			if !ok {
				continue
			}
			_ = conn.Close() // Ignore close errors during unregistration
			s.logger.Info("Client disconnected", "user", conn.UserID(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(s.allowedOrigins, func(allowed string) bool {
		return strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host)
	})
}

// newEngine builds a session engine for userID from its saved account.
func (s *Server) newEngine(ctx context.Context, userID string) *game.Engine {
	snap := s.gateway.LoadAccount(ctx, userID)
	opts := []game.Option{
		game.WithRules(s.rules),
		game.WithUser(userID),
		game.WithSnapshot(snap),
		game.WithSaver(s.gateway),
		game.WithTraining(s.training),
	}
	if s.newShoe != nil {
		opts = append(opts, game.WithShoe(s.newShoe()))
	}
	return game.NewEngine(s.logger, opts...)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := game.DefaultUserID
	if q := r.URL.Query().Get("user"); q != "" {
		cleaned, err := storage.CleanKey(q)
		if err != nil {
			http.Error(w, "invalid user", http.StatusBadRequest)
			return
		}
		userID = cleaned
	}

	sess := s.acquire(userID)
	if err := s.attach(r.Context(), sess); err != nil {
		sess.mu.Unlock()
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		s.dropLocked(sess)
		sess.mu.Unlock()
		return
	}

	client := NewConnection(conn, s.logger, sess.engine)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		sess.engine.Unsubscribe(client)
		s.dropLocked(sess)
		sess.mu.Unlock()
		_ = client.Close()
		return
	}
	sess.conn = client
	client.Start()
	sess.mu.Unlock()

	// Connection cleanup is handled by the connection itself
	go func() {
		<-client.Done()
		s.release(sess, client)
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleRules reports the table rules sessions are dealt under.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rules)
}

// handleSnapshot returns the last committed snapshot for a user.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.CleanKey(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "invalid user", http.StatusBadRequest)
		return
	}

	snap, ok := s.gateway.Load(r.Context(), userID)
	if !ok {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore write errors; the client has gone
}

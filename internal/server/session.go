package server

import (
	"context"
	"errors"
	"sync"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/persistence"
)

// session is the single engine a user plays on. At most one connection
// drives it at a time; a new connection for the same user takes it over.
type session struct {
	mu     sync.Mutex
	userID string
	engine *game.Engine
	conn   *Connection
	closed bool // removed from the registry; acquirers must retry
}

// acquire returns the user's session locked, creating it if needed.
func (s *Server) acquire(userID string) *session {
	for {
		s.mu.Lock()
		sess, ok := s.sessions[userID]
		if !ok {
			sess = &session{userID: userID}
			s.sessions[userID] = sess
		}
		s.mu.Unlock()

		sess.mu.Lock()
		if !sess.closed {
			return sess
		}
		sess.mu.Unlock()
	}
}

// attach prepares a locked session for a new connection. Any live
// connection is closed and drained first so the engine has one owner; an
// idle session gets an engine built from the user's latest save.
func (s *Server) attach(ctx context.Context, sess *session) error {
	if old := sess.conn; old != nil {
		s.logger.Info("Taking over session", "user", sess.userID)
		_ = old.Close() // Ignore close errors; the old client is being replaced
		select {
		case <-old.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		sess.conn = nil
	}
	if sess.engine == nil {
		s.flushUser(ctx, sess.userID)
		sess.engine = s.newEngine(ctx, sess.userID)
	}
	return nil
}

// release detaches conn from its session. When conn was the session's
// current connection the session is dropped and its pending save written,
// so the next connection loads the settled balance.
func (s *Server) release(sess *session, conn *Connection) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.conn != conn {
		return
	}
	s.flushUser(context.Background(), sess.userID)
	s.dropLocked(sess)
}

// dropLocked removes a session from the registry. The caller holds sess.mu.
func (s *Server) dropLocked(sess *session) {
	sess.conn = nil
	sess.closed = true
	s.mu.Lock()
	if s.sessions[sess.userID] == sess {
		delete(s.sessions, sess.userID)
	}
	s.mu.Unlock()
}

// flushUser commits the user's pending save so a following load sees it.
func (s *Server) flushUser(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := s.gateway.FlushUser(ctx, userID); err != nil && !errors.Is(err, persistence.ErrClosed) {
		s.logger.Warn("Failed to flush save", "user", userID, "error", err)
	}
}

// SessionCount returns the number of users with a live session.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

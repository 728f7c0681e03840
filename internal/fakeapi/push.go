package fakeapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quickbite/internal/realtime"
)

// handleWS upgrades the push connection. Authentication mirrors the real
// backend: the session token rides the query string.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	userID, _, err := s.parseToken(token)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.conns[userID] = append(s.conns[userID], conn)
	s.mu.Unlock()

	// drain until the client hangs up, then unregister
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.mu.Lock()
		conns := s.conns[userID]
		for i, c := range conns {
			if c == conn {
				s.conns[userID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		_ = conn.Close()
	}()
}

// publish sends an event to every live connection of a user. Write failures
// drop the connection; the client's reconnect loop recovers it.
func (s *Server) publish(userID string, ev realtime.Event) {
	s.mu.Lock()
	conns := append([]*websocket.Conn(nil), s.conns[userID]...)
	s.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(ev); err != nil {
			slog.Warn("push write failed", "error", err)
		}
	}
}

// Publish injects an arbitrary event for a user; tests use it to simulate
// duplicate deliveries and out-of-order arrival.
func (s *Server) Publish(userID string, ev realtime.Event) {
	s.publish(userID, ev)
}

// DropConnections closes every live push connection of a user, simulating a
// server-side drop; the client's reconnect loop is expected to recover.
func (s *Server) DropConnections(userID string) {
	s.mu.Lock()
	conns := s.conns[userID]
	s.conns[userID] = nil
	s.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

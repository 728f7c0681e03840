// Package session owns the per-login state that the original client kept as
// ambient globals: the persisted token, the selected city, and the push
// channel singleton. It is created once at startup and injected into
// everything that needs identity.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"quickbite/internal/model"
	"quickbite/internal/realtime"
)

const (
	keyToken        = "token"
	keySelectedCity = "selected_city"
)

// Claims are decoded from the token for local role gating. The client holds
// no signing secret, so the parse is unverified; the server remains the
// authority on every request.
type Claims struct {
	UserID string
	Name   string
	Role   model.Role
}

type Session struct {
	store *Store

	mu      sync.Mutex
	token   string
	claims  Claims
	channel *realtime.Channel
}

// New loads any persisted token from the store. The realtime channel may be
// attached later; the session tears it down on logout/expiry.
func New(store *Store) (*Session, error) {
	s := &Session{store: store}
	tok, err := store.Get(keyToken)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if tok != "" {
		if err := s.setToken(tok); err != nil {
			// a stale or malformed token is not fatal; start logged out
			slog.Warn("discarding persisted token", "error", err)
			_ = store.Delete(keyToken)
		}
	}
	return s, nil
}

// AttachChannel hands the session ownership of the push channel.
func (s *Session) AttachChannel(ch *realtime.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel = ch
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) Claims() Claims {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims
}

// SetToken installs a freshly issued token and persists it. Any existing
// push connection belongs to the previous identity and is disconnected;
// the caller reconnects with the new token.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	ch := s.channel
	s.mu.Unlock()
	if ch != nil {
		ch.Disconnect()
	}

	if err := s.setToken(token); err != nil {
		return err
	}
	return s.store.Set(keyToken, token)
}

func (s *Session) setToken(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	parsed := Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		parsed.UserID = sub
	}
	if name, ok := claims["name"].(string); ok {
		parsed.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		parsed.Role = model.Role(role)
	}

	s.mu.Lock()
	s.token = token
	s.claims = parsed
	s.mu.Unlock()
	return nil
}

// Logout clears the persisted token and tears down the push channel.
func (s *Session) Logout() error {
	s.clear()
	return s.store.Delete(keyToken)
}

// Expire is the AuthExpired hook target: same teardown as logout, fired
// when a request outside the auth flow gets a 401.
func (s *Session) Expire() {
	slog.Info("session expired, tearing down")
	s.clear()
	if err := s.store.Delete(keyToken); err != nil {
		slog.Error("clearing expired token failed", "error", err)
	}
}

func (s *Session) clear() {
	s.mu.Lock()
	ch := s.channel
	s.token = ""
	s.claims = Claims{}
	s.mu.Unlock()
	if ch != nil {
		ch.Disconnect()
	}
}

// SelectedCity returns the persisted city choice, empty if none.
func (s *Session) SelectedCity() (string, error) {
	return s.store.Get(keySelectedCity)
}

func (s *Session) SetSelectedCity(city string) error {
	return s.store.Set(keySelectedCity, city)
}

// Close releases the channel and the backing store.
func (s *Session) Close() error {
	s.mu.Lock()
	ch := s.channel
	s.channel = nil
	s.mu.Unlock()
	if ch != nil {
		ch.Disconnect()
	}
	return s.store.Close()
}

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/model"
	"storefront/store"
)

// Session is the source of truth for "is logged in". It makes no network
// calls; the auth flow hands it the user on success.
type Session struct {
	*persister

	mu      sync.Mutex
	current *model.Session
}

func NewSession(kv store.Store, logger *slog.Logger) *Session {
	return &Session{persister: newPersister(kv, store.KeySession, logger)}
}

// Load hydrates the session once at start-up. Absent or malformed data,
// including a snapshot with no user id, leaves the user signed out.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var saved model.Session
	if !s.readJSON(ctx, &saved) || saved.ID == "" {
		s.current = nil
		return
	}
	s.current = &saved
}

// Set replaces the session; nil signs out and deletes the persisted key.
// Memory is updated even if persisting fails.
func (s *Session) Set(ctx context.Context, sess *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		s.current = nil
		s.remove(ctx)
		return
	}
	cp := *sess
	s.current = &cp
	s.writeJSON(ctx, cp)
}

// Logout is Set(nil). Cart, wishlist and wallet are left alone.
func (s *Session) Logout(ctx context.Context) { s.Set(ctx, nil) }

func (s *Session) Current() (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Session{}, false
	}
	return *s.current, true
}

func (s *Session) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

// Email is the signed-in user's email, or "".
func (s *Session) Email() string {
	cur, _ := s.Current()
	return cur.Email
}

// Token is the bearer token of the current session, or "".
func (s *Session) Token() string {
	cur, _ := s.Current()
	return cur.Token
}

// Expired reports whether the session token's exp claim is at or before now.
// The signature is not verified. Sessions without a token or without an
// exp claim never expire locally.
func (s *Session) Expired(now time.Time) bool {
	tok := s.Token()
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		s.logger.Warn("unreadable session token", "error", err)
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

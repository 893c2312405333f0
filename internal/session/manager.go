package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "agrilink_session"

// Session is the authenticated identity held by the client between
// requests, persisted so a restart keeps the login.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Role         string    `json:"role,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the access token's lifetime has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Manager owns the current session. It persists through the same local
// store the guest aggregates use and satisfies rest.TokenSource.
type Manager struct {
	store guest.Store
	log   *logger.Logger

	mu      sync.RWMutex
	current *Session
}

func NewManager(store guest.Store, log *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	}
	m := &Manager{store: store, log: log}
	m.current = m.load()
	return m, nil
}

// Current returns the active session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}

// Authenticated reports whether a session exists, expired or not.
func (m *Manager) Authenticated() bool {
	return m.Current() != nil
}

// AccessToken implements rest.TokenSource. An expired token is still
// returned; the backend answers 401 and the auth layer refreshes.
func (m *Manager) AccessToken(_ context.Context) string {
	current := m.Current()
	if current == nil {
		return ""
	}
	return current.AccessToken
}

// Set installs and persists a new session.
func (m *Manager) Set(session Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encode session")
	}
	m.mu.Lock()
	copied := session
	m.current = &copied
	m.mu.Unlock()
	if err := m.store.Set(sessionKey, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persist session")
	}
	return nil
}

// Clear logs out: drops the in-memory session and the persisted copy.
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if err := m.store.Delete(sessionKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear session")
	}
	return nil
}

func (m *Manager) load() *Session {
	raw, ok := m.store.Get(sessionKey)
	if !ok {
		return nil
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// Same soft-fail policy as guest state: corrupt means absent.
		return nil
	}
	if session.AccessToken == "" {
		return nil
	}
	return &session
}

// ExpiryFromToken reads the exp claim without verifying the signature;
// verification is the backend's job, the client only schedules around
// the expiry.
func ExpiryFromToken(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("access token has no expiry")
	}
	return exp.Time, nil
}

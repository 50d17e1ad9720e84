// Package auth implements the admin session gate. A single shared password
// grants a time-limited session token; mutating endpoints require a valid
// token.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredential means the supplied password was wrong.
var ErrInvalidCredential = errors.New("invalid credential")

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "pyqvault_session"

// Gate validates the admin credential and tracks issued sessions.
type Gate struct {
	password   string
	sessionTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]time.Time // token -> expiry
	now      func() time.Time
}

// NewGate creates a gate for the given password. Sessions expire after ttl.
func NewGate(password string, ttl time.Duration) *Gate {
	return &Gate{
		password:   password,
		sessionTTL: ttl,
		sessions:   make(map[string]time.Time),
		now:        time.Now,
	}
}

// Login checks the credential and returns a new session token.
func (g *Gate) Login(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		return "", ErrInvalidCredential
	}

	token := uuid.NewString()
	g.mu.Lock()
	g.sessions[token] = g.now().Add(g.sessionTTL)
	g.mu.Unlock()
	return token, nil
}

// Logout revokes the session token. Unknown tokens are ignored.
func (g *Gate) Logout(token string) {
	g.mu.Lock()
	delete(g.sessions, token)
	g.mu.Unlock()
}

// Valid reports whether the token identifies a live session.
func (g *Gate) Valid(token string) bool {
	if token == "" {
		return false
	}

	g.mu.RLock()
	expiry, ok := g.sessions[token]
	g.mu.RUnlock()

	if !ok {
		return false
	}
	if g.now().After(expiry) {
		g.mu.Lock()
		delete(g.sessions, token)
		g.mu.Unlock()
		return false
	}
	return true
}

// CleanupExpired removes expired sessions and returns how many were dropped.
func (g *Gate) CleanupExpired() int {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for token, expiry := range g.sessions {
		if now.After(expiry) {
			delete(g.sessions, token)
			removed++
		}
	}
	return removed
}

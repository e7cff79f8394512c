// Package auth implements the console's session authentication: a
// fixed-credential login that mints bearer session tokens, and middleware
// that gates the API on them. Sessions live in memory with an explicit
// init-on-login / teardown-on-logout lifecycle.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrInvalidCredentials is returned when the email/password pair does not
// match the admin account.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	adminEmail    = "admin@nexus.ai"
	adminPassword = "password"
)

// Session is one authenticated console session.
type Session struct {
	Token     string
	Email     string
	CreatedAt time.Time
}

// Manager validates logins and tracks live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// Login validates the credential pair and mints a session. Any pair other
// than the admin account rejects with ErrInvalidCredentials.
func (m *Manager) Login(email, password string) (*Session, error) {
	if email != adminEmail || password != adminPassword {
		return nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := &Session{
		Token:     token,
		Email:     email,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[token] = session
	m.mu.Unlock()
	return session, nil
}

// Validate returns the session for a bearer token, or nil when the token
// is unknown or revoked.
func (m *Manager) Validate(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[token]
}

// Logout revokes a session. Revoking an unknown token is a no-op, which
// keeps logout idempotent.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// RequireAuth is middleware that rejects requests without a valid bearer
// session token.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if m.Validate(token) == nil {
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

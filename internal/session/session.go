// Package session issues and validates self-contained, encrypted session
// tokens. Nothing is stored server side: a token is valid exactly when it
// opens under the manager's key and has not yet expired.
package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// CookieName is the HTTP-only cookie that carries the session token.
const CookieName = "session"

const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
)

const keyInfo = "driver-tracker session v1"

var b64 = base64.RawURLEncoding

// Subject is the identity a session is issued for.
type Subject struct {
	ID    int64
	Email string
	Name  string
	Role  string
}

// Session is the decoded content of a valid token.
type Session struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

type claims struct {
	Sub   int64  `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Exp   int64  `json:"exp"`
}

// Manager seals and opens session tokens.
type Manager struct {
	aead cipher.AEAD
	ttl  time.Duration
	now  func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager derives the token key from secret and builds a Manager whose
// tokens live for ttl.
func NewManager(secret string, ttl time.Duration, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init session cipher: %w", err)
	}

	m := &Manager{aead: aead, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the lifetime of newly issued tokens.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a token for the subject expiring TTL from now.
func (m *Manager) Issue(sub Subject) (string, Session, error) {
	expiresAt := m.now().Add(m.ttl).Truncate(time.Millisecond)
	payload, err := json.Marshal(claims{
		Sub:   sub.ID,
		Email: sub.Email,
		Name:  sub.Name,
		Role:  sub.Role,
		Exp:   expiresAt.UnixMilli(),
	})
	if err != nil {
		return "", Session{}, err
	}

	nonce := make([]byte, m.aead.NonceSize(), m.aead.NonceSize()+len(payload)+m.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", Session{}, fmt.Errorf("session nonce: %w", err)
	}
	sealed := m.aead.Seal(nonce, nonce, payload, nil)

	return b64.EncodeToString(sealed), Session{
		UserID:    sub.ID,
		Email:     sub.Email,
		Name:      sub.Name,
		Role:      sub.Role,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify opens a token. It reports false for malformed, tampered or expired
// tokens; callers treat all of these as "no session". A token whose expiry
// equals the current instant is already expired.
func (m *Manager) Verify(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	raw, err := b64.DecodeString(token)
	if err != nil || len(raw) < m.aead.NonceSize()+m.aead.Overhead() {
		return Session{}, false
	}
	nonce, ciphertext := raw[:m.aead.NonceSize()], raw[m.aead.NonceSize():]
	payload, err := m.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Session{}, false
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return Session{}, false
	}
	if c.Exp <= m.now().UnixMilli() {
		return Session{}, false
	}
	switch c.Role {
	case RoleAdmin, RoleDriver:
	default:
		return Session{}, false
	}

	return Session{
		UserID:    c.Sub,
		Email:     c.Email,
		Name:      c.Name,
		Role:      c.Role,
		ExpiresAt: time.UnixMilli(c.Exp),
	}, true
}

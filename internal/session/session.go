// internal/session/session.go
// Client-side sessions: the username lives in a cookie signed with a
// per-process key, there is no server-side session table. Restarting
// the process rotates the key and invalidates every outstanding cookie.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	cookieName = "session"
	maxAge     = 24 * time.Hour
)

var ErrKeyGeneration = errors.New("could not generate session keys")

// Keys holds the signing and encryption material for the cookie codec.
// Generated at boot and held only in memory.
type Keys struct {
	HashKey  []byte
	BlockKey []byte
}

// NewKeys draws fresh random key material.
func NewKeys() (Keys, error) {
	hashKey := securecookie.GenerateRandomKey(32)
	blockKey := securecookie.GenerateRandomKey(16)
	if hashKey == nil || blockKey == nil {
		return Keys{}, ErrKeyGeneration
	}
	return Keys{HashKey: hashKey, BlockKey: blockKey}, nil
}

// Manager signs and verifies the session cookie.
type Manager struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewManager builds a manager around explicitly supplied keys. Secure
// marks the cookie HTTPS-only.
func NewManager(keys Keys, secure bool) *Manager {
	codec := securecookie.New(keys.HashKey, keys.BlockKey)
	codec.MaxAge(int(maxAge.Seconds()))
	return &Manager{codec: codec, secure: secure}
}

// Establish binds the client's cookie to username.
func (m *Manager) Establish(w http.ResponseWriter, username string) error {
	encoded, err := m.codec.Encode(cookieName, username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Current returns the authenticated username carried by the request.
// A missing, tampered or expired cookie reads as no session.
func (m *Manager) Current(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var username string
	if err := m.codec.Decode(cookieName, cookie.Value, &username); err != nil {
		return "", false
	}
	if username == "" {
		return "", false
	}
	return username, true
}

// Clear removes the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

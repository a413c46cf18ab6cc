// Package auth holds the admin session: a signed cookie loaded once per
// request and carried in the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "auth"
	// MaxAge is the session lifetime in seconds (one week).
	MaxAge = 7 * 24 * 60 * 60
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is the per-request view of the admin cookie.
type Session struct {
	Authenticated bool
	Username      string
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session placed by Manager.Load, or an
// unauthenticated session when there is none.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}

// Manager checks the admin credentials and reads and writes the session cookie.
type Manager struct {
	store        sessions.Store
	username     string
	passwordHash []byte
}

// NewManager hashes password once so each login only runs a bcrypt comparison.
func NewManager(secret, username, password string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(MaxAge)

	return &Manager{store: store, username: username, passwordHash: hash}, nil
}

// Check returns ErrInvalidCredentials unless username and password match the admin account.
func (m *Manager) Check(username, password string) error {
	if username != m.username {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login writes an authenticated session cookie for username.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, username string) error {
	// A stale or tampered cookie yields a fresh session along with the error.
	session, _ := m.store.Get(r, CookieName)
	session.Values["authenticated"] = true
	session.Values["username"] = username
	session.Options.MaxAge = MaxAge
	return session.Save(r, w)
}

// Logout expires the session cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, CookieName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func (m *Manager) read(r *http.Request) Session {
	session, err := m.store.Get(r, CookieName)
	if err != nil {
		log.Printf("WARN: ignoring unreadable session cookie: %v", err)
		return Session{}
	}
	authenticated, _ := session.Values["authenticated"].(bool)
	username, _ := session.Values["username"].(string)
	return Session{Authenticated: authenticated, Username: username}
}

// Load reads the session cookie and stores the result in the request context.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), m.read(r))))
	})
}

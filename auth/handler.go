package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"inspectlog/respond"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler accepts {"username","password"} and sets the session cookie.
func LoginHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			respond.Message(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := m.Check(strings.TrimSpace(c.Username), c.Password); err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				log.Printf("WARN: failed login attempt for %q", c.Username)
				respond.Message(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			respond.Error(w, err)
			return
		}
		if err := m.Login(w, r, strings.TrimSpace(c.Username)); err != nil {
			respond.Error(w, err)
			return
		}
		respond.Message(w, http.StatusOK, "Login successful")
	}
}

// LogoutHandler expires the session cookie.
func LogoutHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Logout(w, r); err != nil {
			respond.Error(w, err)
			return
		}
		respond.Message(w, http.StatusOK, "Logged out")
	}
}

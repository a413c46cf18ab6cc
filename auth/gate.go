package auth

import (
	"net/http"
	"strings"

	"inspectlog/respond"
)

// IsPublicPath reports whether a page can be opened without logging in:
// the home page, the login page, every device's logging form and static files.
func IsPublicPath(path string) bool {
	switch path {
	case "/", "/login", "/healthz":
		return true
	}
	return strings.HasPrefix(path, "/log/") || strings.HasPrefix(path, "/static/")
}

// IsPublicAPI reports whether an API call is allowed without a session.
func IsPublicAPI(method, path string) bool {
	switch path {
	case "/api/auth/login", "/api/auth/logout":
		return true
	case "/api/loggers/create":
		return method == http.MethodPost
	}
	return false
}

// Gate enforces the session on every route. It must run after Manager.Load.
// Pages redirect (to /login when signed out, to /admin when a signed-in user
// opens /login); API calls without a session get 401.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		path := r.URL.Path

		if strings.HasPrefix(path, "/api/") {
			if !s.Authenticated && !IsPublicAPI(r.Method, path) {
				respond.Message(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if IsPublicPath(path) {
			if s.Authenticated && path == "/login" {
				http.Redirect(w, r, "/admin", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if !s.Authenticated {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

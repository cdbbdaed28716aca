package middleware

import (
	"net/http"
	"strings"

	"campusguard/internal/service/auth"
)

// SessionCookie is the cookie holding the login token.
const SessionCookie = "session"

// public reports whether path may be served without a session: the login
// and setup pages, auth endpoints and static assets.
func public(path string) bool {
	return path == "/login" ||
		path == "/setup" ||
		strings.HasPrefix(path, "/auth/") && path != "/auth/password" ||
		strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/css/") ||
		strings.HasPrefix(path, "/js/")
}

// AuthMiddleware requires a valid session cookie outside public paths.
func AuthMiddleware(sessions *auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(SessionCookie)
			if err != nil || !sessions.Valid(cookie.Value) {
				// API and AJAX callers get 401, pages are redirected to login
				if strings.HasPrefix(r.URL.Path, "/api/") ||
					r.URL.Path == "/auth/password" ||
					r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
					r.Header.Get("Content-Type") == "application/json" {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

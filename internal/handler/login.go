package handler

import (
	"fmt"
	"net/http"
	"time"

	"campusguard/internal/dto"
	"campusguard/internal/logger"
	"campusguard/internal/middleware"
	"campusguard/internal/model"
	"campusguard/internal/service/auth"
)

// SessionCookie carries the login token.
const SessionCookie = middleware.SessionCookie

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetupHandler handles POST /auth/setup: sets the first admin password. It is
// refused once a password exists.
func SetupHandler(creds *auth.CredentialStore, sessions *auth.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		if creds.IsSet() {
			writeJSON(w, logger, http.StatusConflict, dto.ErrorResponse{Error: "password already set"})
			return
		}

		password, confirm := r.FormValue("password"), r.FormValue("confirm")
		if password != confirm {
			writeError(w, logger, fmt.Errorf("%w: passwords do not match", model.ErrInvalidInput))
			return
		}
		if err := creds.Set(password); err != nil {
			writeError(w, logger, err)
			return
		}

		token, expires := sessions.Create()
		setSessionCookie(w, token, expires)
		logger.Info("🔑 Admin password set")
		writeJSON(w, logger, http.StatusCreated, map[string]string{"status": "password set"})
	}
}

// LoginHandler handles POST /auth/login by validating password and issuing a session cookie.
func LoginHandler(creds *auth.CredentialStore, sessions *auth.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		ok, err := creds.Verify(r.FormValue("password"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if !ok {
			logger.Warning("Failed login attempt from %s", r.RemoteAddr)
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}

		token, expires := sessions.Create()
		setSessionCookie(w, token, expires)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LogoutHandler ends the caller's session and clears the cookie.
func LogoutHandler(sessions *auth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			sessions.Revoke(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// ChangePasswordHandler handles POST /auth/password. Every session is ended
// after a change, including the caller's.
func ChangePasswordHandler(creds *auth.CredentialStore, sessions *auth.SessionStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var req dto.PasswordChange
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, err)
			return
		}
		if req.New != req.Confirm {
			writeError(w, logger, fmt.Errorf("%w: passwords do not match", model.ErrInvalidInput))
			return
		}

		ok, err := creds.Verify(req.Current)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if !ok {
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}

		if err := creds.Set(req.New); err != nil {
			writeError(w, logger, err)
			return
		}
		sessions.RevokeAll()
		logger.Info("🔑 Admin password changed")
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "password changed"})
	}
}

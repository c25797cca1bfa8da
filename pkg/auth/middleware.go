package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/lostfound/pkg/httpx"
	"github.com/ghuser/lostfound/pkg/logger"
)

const sessionName = "lostfound_session"
const sessionAdminKey = "admin"

// LoadAdmin is a chi middleware that attaches the admin principal to the
// request context when a valid admin session cookie is present. Requests
// without one pass through unchanged.
func LoadAdmin(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if name, ok := adminFromSession(r, store, log); ok {
				r = r.WithContext(WithAdmin(r.Context(), name))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a chi middleware that enforces an admin session.
// Returns 401 Unauthorized if the session is missing, invalid, or not an admin session.
//
// After this middleware, handlers can safely call auth.AdminFromCtx(r.Context()).
func RequireAdmin(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, ok := adminFromSession(r, store, log)
			if !ok {
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "error": "admin authentication required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), name)))
		})
	}
}

func adminFromSession(r *http.Request, store sessions.Store, log logger.Logger) (string, bool) {
	if _, err := r.Cookie(sessionName); err != nil {
		return "", false
	}
	session, err := store.Get(r, sessionName)
	if err != nil {
		log.WarnContext(r.Context(), "invalid session cookie", "error", err)
		return "", false
	}
	name, ok := session.Values[sessionAdminKey].(string)
	if !ok || name == "" {
		log.WarnContext(r.Context(), "session missing admin principal")
		return "", false
	}
	return name, true
}

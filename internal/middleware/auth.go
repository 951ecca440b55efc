package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/clipchat/internal/handler"
	"github.com/dukerupert/clipchat/internal/model"
	"github.com/dukerupert/clipchat/internal/store"
)

const sessionCookieName = "clipchat_session"

// RequireAuth validates the session cookie and populates the session in
// the request context.
func RequireAuth(sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFromRequest(sessions, r)
			if sess == nil || sess.UserID == "" {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(handler.WithSession(r.Context(), sess)))
		})
	}
}

// RequireAdmin validates the session cookie and rejects non-admin sessions.
func RequireAdmin(sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFromRequest(sessions, r)
			if sess == nil {
				unauthorized(w)
				return
			}
			if !sess.IsAdmin {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"error": "admin access required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(handler.WithSession(r.Context(), sess)))
		})
	}
}

func sessionFromRequest(sessions *store.SessionStore, r *http.Request) *model.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := sessions.GetByToken(cookie.Value)
	if err != nil || sess == nil {
		return nil
	}
	return sess
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

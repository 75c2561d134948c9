package middleware

import (
	"context"
	"net/http"

	"formulahub-backend/pkg/session"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// EnsureSession guarantees every request carries a session identifier.
// A request without the sid cookie gets a freshly minted one, set on the
// response so the client reuses it; the handler sees the same id either
// way via GetSessionID.
func EnsureSession(secure bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			} else {
				sessionID = session.NewID()
				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(session.CookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID returns the session identifier attached by EnsureSession
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

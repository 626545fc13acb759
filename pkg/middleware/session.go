package middleware

import (
	"net/http"
	"strings"

	"github.com/Luiza-Bandeira/VarandaJK/pkg/logger"
)

// SessionIDHeader identifies the browser session that owns a cart.
const SessionIDHeader = "X-Session-ID"

const maxSessionIDLength = 128

// Session copies the X-Session-ID header into the request context. Requests
// without a usable header are rejected with 400 MISSING_SESSION.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionIDHeader))
		if id == "" || len(id) > maxSessionIDLength {
			writeError(w, http.StatusBadRequest, "MISSING_SESSION", "X-Session-ID header is required")
			return
		}
		ctx := logger.WithSessionID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionIDFromRequest returns the session id stored by Session.
func SessionIDFromRequest(r *http.Request) string {
	return logger.SessionIDFromContext(r.Context())
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/milletmart/milletmart-backend/pkg/logger"
)

// SessionIDHeader carries the anonymous cart session identifier. The server
// issues one on first contact and echoes it on every response; clients send
// it back on subsequent requests.
const SessionIDHeader = "Session-Id"

func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(SessionIDHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(SessionIDHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

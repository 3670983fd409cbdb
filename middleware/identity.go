package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "userID"

// UserIDHeader carries the caller's locally generated identifier. There is no
// account system: the id is minted here on first contact and the client is
// expected to persist it and send it back on every request.
const UserIDHeader = "X-Recovr-User"

// IdentityMiddleware resolves the anonymous local user for a request. A
// request without an id gets a fresh one, echoed in the response header so
// the client can store it.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			userID = "local_" + uuid.NewString()
		}
		w.Header().Set(UserIDHeader, userID)

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the local user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

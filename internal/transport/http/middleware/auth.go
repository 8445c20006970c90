package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vedran77/lax/internal/rpc"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// TokenVerifier returns the user id carried by a bearer token.
type TokenVerifier interface {
	ParseToken(token string) (string, error)
}

func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeUnauthorized(w, "Missing or invalid token")
				return
			}

			userID, err := verifier.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user id, or "" when the request
// was not authenticated.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = jsonEncode(w, rpc.Failure(message))
}
